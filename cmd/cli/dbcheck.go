package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var dbCheckURL string

// dbCheckCmd verifies a Postgres preferences database is reachable
var dbCheckCmd = &cobra.Command{
	Use:   "db-check",
	Short: "Check the Postgres connection used for preferences",
	Long: `Open a plain database/sql connection through lib/pq and ping it. This
is independent of the pgx pool so a failure here isolates network or
credential problems from pool configuration.`,
	Example: `  rwmarket db-check
  rwmarket db-check --url postgres://rw:rw@localhost:5432/rwmarket?sslmode=disable`,
	Args: cobra.NoArgs,
	RunE: runDBCheck,
}

func init() {
	rootCmd.AddCommand(dbCheckCmd)
	dbCheckCmd.Flags().StringVar(&dbCheckURL, "url", "", "Postgres URL (default database.url)")
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	url := dbCheckURL
	if url == "" {
		url = cfg.Database.URL
	}
	if url == "" {
		return fmt.Errorf("no database URL: set --url, DATABASE_URL or database.url")
	}

	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("version query failed: %w", err)
	}

	logger.Info().Dur("latency", time.Since(start)).Msg("Database reachable")
	fmt.Println(version)
	return nil
}
