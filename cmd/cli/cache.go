package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scolli03/rwmarket/internal/app"
	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/export"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/storage"
)

var (
	cacheSide     string
	cacheDiscount int64
	cacheMargin   float64
	cacheSelect   []string
	cacheFormat   string
	cacheOwner    string
	cacheSave     bool
	cacheOutput   string
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache <rankID>",
	Short: "Quote a buy price for a ranked war reward cache",
	Long: `Resolve the ranked war report, price every reward cache item against the
external marketplace and print the buy quote for one faction.

Use --select to pick a different listing for an item by its index in the
ascending listing order.`,
	Example: `  rwmarket cache 21045
  rwmarket cache 21045 --side loser --margin 0.05
  rwmarket cache 21045 --select 1118=2 --format html`,
	Args: cobra.ExactArgs(1),
	RunE: runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)

	cacheCmd.Flags().StringVar(&cacheSide, "side", "winner", "Faction side: winner or loser")
	cacheCmd.Flags().Int64Var(&cacheDiscount, "discount", 0, "Absolute discount per cache (default from config or owner preferences)")
	cacheCmd.Flags().Float64Var(&cacheMargin, "margin", 0, "Margin fraction (default from config or owner preferences)")
	cacheCmd.Flags().StringArrayVar(&cacheSelect, "select", nil, "Select a listing as itemID=index (repeatable)")
	cacheCmd.Flags().StringVar(&cacheFormat, "format", "", "Export format: csv, html, xlsx or json (default plain table)")
	cacheCmd.Flags().StringVar(&cacheOwner, "owner", "", "Apply this owner's saved preferences")
	cacheCmd.Flags().BoolVar(&cacheSave, "save", false, "Also save the export to storage")
	cacheCmd.Flags().StringVarP(&cacheOutput, "output", "o", "", "Write to this file instead of stdout")
}

func runCache(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rankID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || rankID <= 0 {
		return fmt.Errorf("invalid rank id: %s", args[0])
	}
	side, err := pipeline.ParseSide(cacheSide)
	if err != nil {
		return err
	}
	selections, err := parseSelections(cacheSelect)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cacheOwner != "")
	if err != nil {
		return err
	}
	defer a.Close()

	policy, err := cachePolicy(cmd, a)
	if err != nil {
		return err
	}

	wc, err := a.War.Run(ctx, rankID)
	if err != nil {
		return err
	}
	ws := wc.Side(side)
	for itemID, index := range selections {
		item, ok := ws.Item(itemID)
		if !ok {
			return fmt.Errorf("item %d is not in the %s cache", itemID, side)
		}
		if err := item.Select(index); err != nil {
			return fmt.Errorf("item %d: %w", itemID, err)
		}
	}

	sheet := ws.Quote(policy)
	logger.Info().
		Int64("rank_id", rankID).
		Str("side", string(side)).
		Str("faction", ws.Faction.Name).
		Int64("total", sheet.RoundedTotal).
		Msg("Cache quoted")

	var buf bytes.Buffer
	if cacheFormat == "" {
		printCacheTable(&buf, ws, sheet)
	} else {
		format, err := export.ParseFormat(cacheFormat)
		if err != nil {
			return err
		}
		if err := export.WriteCache(&buf, format, export.SideHeader(ws), sheet); err != nil {
			return err
		}
		if cacheSave {
			meta := &storage.Metadata{Kind: "cache", RankID: rankID, Side: string(side)}
			if err := saveExport(cmd, a, format, buf.Bytes(), meta); err != nil {
				return err
			}
		}
	}

	return writeOutput(cacheOutput, buf.Bytes())
}

// parseSelections reads itemID=index pairs
func parseSelections(raw []string) (map[int64]int, error) {
	out := make(map[int64]int, len(raw))
	for _, s := range raw {
		item, index, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid selection %q: want itemID=index", s)
		}
		itemID, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q: %w", s, err)
		}
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 {
			return nil, fmt.Errorf("invalid selection %q: index must be a non-negative integer", s)
		}
		out[itemID] = i
	}
	return out, nil
}

// cachePolicy resolves config defaults, then owner preferences, then flags
func cachePolicy(cmd *cobra.Command, a *app.App) (pricing.CachePolicy, error) {
	policy := a.CachePolicy()
	if cacheOwner != "" {
		prefs, err := a.Prefs.Get(cmd.Context(), cacheOwner)
		if err != nil {
			return policy, err
		}
		policy.Discount = prefs.CacheDiscount
		policy.Margin = prefs.CacheMargin
	}
	if cmd.Flags().Changed("discount") {
		if cacheDiscount < 0 {
			return policy, fmt.Errorf("discount must be non-negative")
		}
		policy.Discount = cacheDiscount
	}
	if cmd.Flags().Changed("margin") {
		if cacheMargin < 0 || cacheMargin >= 1 {
			return policy, fmt.Errorf("margin must be in [0, 1)")
		}
		policy.Margin = cacheMargin
	}
	return policy, nil
}

func printCacheTable(w io.Writer, ws *pipeline.WarSide, sheet cachequote.Sheet) {
	fmt.Fprintf(w, "%s (%s)\n\n", ws.Faction.Name, ws.Side)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE\tBUY\tTOTAL\tVS AVG\tLISTING")
	for _, r := range sheet.Rows {
		listing := "-"
		if r.Listings > 0 {
			listing = fmt.Sprintf("%d/%d", r.Selected+1, r.Listings)
		}
		name := r.Name
		if r.Note != "" {
			name += " (" + r.Note + ")"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			name, r.Quantity,
			export.FormatNumber(r.Price), export.FormatNumber(r.BuyPrice), export.FormatNumber(r.LineTotal),
			export.FormatPercent(r.Deviation), listing)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: $%s\nQuote: %s\n", export.FormatNumber(sheet.Total), export.FormatMoney(sheet.RoundedTotal))
}
