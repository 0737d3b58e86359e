package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/types"
)

const defaultSheet = "Sheet1"

// WriteMarketXLSX writes the weapons and armor tables as one workbook with
// a sheet per table
func WriteMarketXLSX(w io.Writer, weapons, armor []types.PricedItem, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, tbl := range []struct {
		table Table
		name  string
		items []types.PricedItem
	}{
		{TableWeapons, "Weapons", weapons},
		{TableArmor, "Armor", armor},
	} {
		if _, err := f.NewSheet(tbl.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", tbl.name, err)
		}

		header := []any{"Item Name", "Slot", "Set", statsHeader(tbl.table), "Bonus", "Rarity"}
		if opts.IncludeListed {
			header = append(header, "Listed Price")
		}
		header = append(header, "Price")
		if err := f.SetSheetRow(tbl.name, "A1", &header); err != nil {
			return err
		}

		for i, it := range tbl.items {
			row := []any{it.Name, string(it.Slot), it.ArmorSet, statsText(tbl.table, it.ClassifiedItem), it.Bonus, it.Rarity}
			if opts.IncludeListed {
				row = append(row, it.ListedPrice)
			}
			row = append(row, it.Price)
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(tbl.name, cell, &row); err != nil {
				return err
			}
		}
		if err := f.SetColWidth(tbl.name, "A", "A", 32); err != nil {
			return err
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteCacheXLSX writes a cache quote as a single-sheet workbook
func WriteCacheXLSX(w io.Writer, header CacheHeader, sheet cachequote.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := "Cache Quote"
	if err := f.SetSheetName(defaultSheet, name); err != nil {
		return err
	}

	rows := [][]any{
		{header.Faction},
		{"Cache Name", "Quantity", "Listed Price", "Buy Price", "Total Buy Price", "Deviation", "Note"},
	}
	for _, r := range sheet.Rows {
		rows = append(rows, []any{r.Name, r.Quantity, r.Price, r.BuyPrice, r.LineTotal, FormatPercent(r.Deviation), r.Note})
	}
	rows = append(rows,
		[]any{"Total", "", "", "", sheet.Total},
		[]any{"Total (Rounded)", "", "", "", sheet.RoundedTotal},
	)

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.Write(w)
}
