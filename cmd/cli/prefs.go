package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/scolli03/rwmarket/internal/app"
	"github.com/scolli03/rwmarket/internal/preferences"
	"github.com/scolli03/rwmarket/internal/sorting"
)

var (
	prefsMarketDiscount float64
	prefsIncludeListed  bool
	prefsArmorSort      string
	prefsCacheDiscount  int64
	prefsCacheMargin    float64
	prefsIconPosition   string
	prefsIconOffset     int
)

// prefsCmd groups the preferences subcommands
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change saved preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <owner>",
	Short: "Print an owner's preferences as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsGet,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <owner>",
	Short: "Change an owner's preferences",
	Long: `Change the given fields of an owner's preferences. Fields without a flag
keep their saved value, or the default when nothing is saved yet.`,
	Example: `  rwmarket prefs set 1234567 --market-discount 0.08 --armor-sort set
  rwmarket prefs set 1234567 --cache-margin 0.02 --icon-position left`,
	Args: cobra.ExactArgs(1),
	RunE: runPrefsSet,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)

	f := prefsSetCmd.Flags()
	f.Float64Var(&prefsMarketDiscount, "market-discount", 0, "Market discount fraction")
	f.BoolVar(&prefsIncludeListed, "include-listed", false, "Include the listed price column in exports")
	f.StringVar(&prefsArmorSort, "armor-sort", "", "Armor order: type or set")
	f.Int64Var(&prefsCacheDiscount, "cache-discount", 0, "Absolute discount per cache")
	f.Float64Var(&prefsCacheMargin, "cache-margin", 0, "Cache margin fraction")
	f.StringVar(&prefsIconPosition, "icon-position", "", "Overlay icon position: left or right")
	f.IntVar(&prefsIconOffset, "icon-offset", 0, "Overlay icon offset in pixels")
}

func openPrefs(cmd *cobra.Command) (preferences.Store, error) {
	return preferences.Open(cmd.Context(), app.PreferencesOptions(cfg))
}

func runPrefsGet(cmd *cobra.Command, args []string) error {
	store, err := openPrefs(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(p)
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	store, err := openPrefs(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("market-discount") {
		p.MarketDiscount = prefsMarketDiscount
	}
	if f.Changed("include-listed") {
		p.IncludeListed = prefsIncludeListed
	}
	if f.Changed("armor-sort") {
		p.ArmorSort = sorting.ArmorMode(prefsArmorSort)
	}
	if f.Changed("cache-discount") {
		p.CacheDiscount = prefsCacheDiscount
	}
	if f.Changed("cache-margin") {
		p.CacheMargin = prefsCacheMargin
	}
	if f.Changed("icon-position") {
		p.IconPosition = prefsIconPosition
	}
	if f.Changed("icon-offset") {
		p.IconOffset = prefsIconOffset
	}

	saved, err := store.Put(cmd.Context(), p)
	if err != nil {
		return err
	}
	logger.Info().Str("owner", saved.Owner).Msg("Preferences saved")
	return printJSON(saved)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
