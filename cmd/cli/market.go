package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scolli03/rwmarket/internal/app"
	"github.com/scolli03/rwmarket/internal/export"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/sorting"
	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/types"
)

var (
	marketFormat        string
	marketTable         string
	marketDiscount      float64
	marketArmorSort     string
	marketIncludeListed bool
	marketOwner         string
	marketSave          bool
	marketOutput        string
)

// marketCmd represents the market command
var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "List ranked war items on the item market",
	Long: `Fetch every item market page, keep ranked war weapons and armor, order
them by slot and price them at the configured discount.

Without --format a plain table of both weapons and armor is printed.`,
	Example: `  rwmarket market
  rwmarket market --format bbcode --table armor --armor-sort set
  rwmarket market --format xlsx --output market.xlsx
  rwmarket market --owner 1234567 --save`,
	Args: cobra.NoArgs,
	RunE: runMarket,
}

func init() {
	rootCmd.AddCommand(marketCmd)

	marketCmd.Flags().StringVar(&marketFormat, "format", "", "Export format: csv, html, bbcode, xlsx or json (default plain table)")
	marketCmd.Flags().StringVar(&marketTable, "table", "weapons", "Table to export for csv, html and bbcode: weapons or armor")
	marketCmd.Flags().Float64Var(&marketDiscount, "discount", -1, "Market discount fraction (default from config or owner preferences)")
	marketCmd.Flags().StringVar(&marketArmorSort, "armor-sort", "", "Armor order: type or set")
	marketCmd.Flags().BoolVar(&marketIncludeListed, "include-listed", false, "Include the listed price column")
	marketCmd.Flags().StringVar(&marketOwner, "owner", "", "Apply this owner's saved preferences")
	marketCmd.Flags().BoolVar(&marketSave, "save", false, "Also save the export to storage")
	marketCmd.Flags().StringVarP(&marketOutput, "output", "o", "", "Write to this file instead of stdout")
}

func runMarket(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, marketOwner != "")
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := marketOptions(cmd, a)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := a.Market.Run(ctx, opts.ArmorMode)
	if err != nil {
		return err
	}
	weapons := pipeline.PriceItems(res.Weapons, opts.Discount)
	armor := pipeline.PriceItems(res.Armor, opts.Discount)

	logger.Info().
		Int("listings", res.Listings).
		Int("weapons", len(weapons)).
		Int("armor", len(armor)).
		Dur("duration", time.Since(start)).
		Msg("Market listed")

	var buf bytes.Buffer
	format := export.Format("")
	if marketFormat == "" {
		printMarketTable(&buf, weapons, armor, opts.IncludeListed)
	} else {
		format, err = export.ParseFormat(marketFormat)
		if err != nil {
			return err
		}
		table, err := export.ParseTable(marketTable)
		if err != nil {
			return err
		}
		if err := export.WriteMarket(&buf, format, table, weapons, armor, opts); err != nil {
			return err
		}
		if marketSave {
			meta := &storage.Metadata{Kind: "market", Custom: map[string]string{"table": string(table)}}
			if err := saveExport(cmd, a, format, buf.Bytes(), meta); err != nil {
				return err
			}
		}
	}

	return writeOutput(marketOutput, buf.Bytes())
}

// marketOptions resolves config defaults, then owner preferences, then flags
func marketOptions(cmd *cobra.Command, a *app.App) (export.Options, error) {
	opts := export.Options{Discount: a.MarketDiscount(), ArmorMode: sorting.ArmorByType}
	if marketOwner != "" {
		prefs, err := a.Prefs.Get(cmd.Context(), marketOwner)
		if err != nil {
			return opts, err
		}
		opts.Discount = prefs.MarketDiscount
		opts.IncludeListed = prefs.IncludeListed
		opts.ArmorMode = prefs.ArmorSort
	}
	if cmd.Flags().Changed("discount") {
		if marketDiscount < 0 || marketDiscount >= 1 {
			return opts, fmt.Errorf("discount must be in [0, 1)")
		}
		opts.Discount = marketDiscount
	}
	if cmd.Flags().Changed("include-listed") {
		opts.IncludeListed = marketIncludeListed
	}
	if marketArmorSort != "" {
		if marketArmorSort != string(sorting.ArmorByType) && marketArmorSort != string(sorting.ArmorBySet) {
			return opts, fmt.Errorf("armor-sort must be type or set")
		}
		opts.ArmorMode = sorting.ParseArmorMode(marketArmorSort)
	}
	return opts, nil
}

func printMarketTable(w io.Writer, weapons, armor []types.PricedItem, includeListed bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(title, stats string, items []types.PricedItem, statsOf func(types.ClassifiedItem) string) {
		fmt.Fprintf(tw, "%s (%d)\n", title, len(items))
		if includeListed {
			fmt.Fprintf(tw, "ID\tNAME\tRARITY\t%s\tBONUS\tLISTED\tPRICE\n", stats)
		} else {
			fmt.Fprintf(tw, "ID\tNAME\tRARITY\t%s\tBONUS\tPRICE\n", stats)
		}
		for _, it := range items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t", it.ID, it.Name, it.Rarity, statsOf(it.ClassifiedItem), it.Bonus)
			if includeListed {
				fmt.Fprintf(tw, "%s\t", export.FormatMoney(it.ListedPrice))
			}
			fmt.Fprintf(tw, "%s\n", export.FormatMoney(it.Price))
		}
		fmt.Fprintln(tw)
	}
	section("WEAPONS", "DMG / ACC / QUAL", weapons, export.WeaponStats)
	section("ARMOR", "ARMOR / QUAL", armor, export.ArmorStats)
	tw.Flush()
}

// saveExport stores a copy of an export under a dated key
func saveExport(cmd *cobra.Command, a *app.App, format export.Format, body []byte, meta *storage.Metadata) error {
	meta.ContentType = format.ContentType()
	meta.Format = string(format)
	meta.CreatedAt = time.Now().UTC()
	key := storage.BuildExportKey(meta.Kind, meta.CreatedAt, format.Extension())
	if err := a.Storage.Put(cmd.Context(), key, body, meta); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}
	logger.Info().Str("key", key).Msg("Export saved")
	return nil
}

func writeOutput(path string, body []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info().Str("path", path).Int("bytes", len(body)).Msg("Output written")
	return nil
}
