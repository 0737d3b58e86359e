package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/sweepers"
)

var pruneRetention time.Duration

// exportsCmd groups the saved export subcommands
var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List or prune saved exports",
}

var exportsListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List saved exports",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExportsList,
}

var exportsPruneCmd = &cobra.Command{
	Use:     "prune",
	Short:   "Delete saved exports older than the retention age",
	Example: `  rwmarket exports prune --retention 72h`,
	Args:    cobra.NoArgs,
	RunE:    runExportsPrune,
}

func init() {
	rootCmd.AddCommand(exportsCmd)
	exportsCmd.AddCommand(exportsListCmd, exportsPruneCmd)
	exportsPruneCmd.Flags().DurationVar(&pruneRetention, "retention", 0, "Retention age (default storage.retention)")
}

func runExportsList(cmd *cobra.Command, args []string) error {
	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return err
	}
	prefix := "exports/"
	if len(args) == 1 {
		prefix = args[0]
	}
	keys, err := store.List(cmd.Context(), prefix)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tFORMAT\tCREATED")
	for _, key := range keys {
		info, err := store.GetInfo(cmd.Context(), key)
		if err != nil {
			return err
		}
		format, created := "-", info.ModifiedAt
		if info.Metadata != nil {
			format = info.Metadata.Format
			if !info.Metadata.CreatedAt.IsZero() {
				created = info.Metadata.CreatedAt
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", key, info.Size, format, created.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func runExportsPrune(cmd *cobra.Command, args []string) error {
	store, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		return err
	}
	retention := cfg.Storage.Retention
	if cmd.Flags().Changed("retention") {
		retention = pruneRetention
	}
	if retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}

	deleted, err := sweepers.NewExportSweeper(store, logger, 0, retention).Sweep(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d exports\n", deleted)
	return nil
}
