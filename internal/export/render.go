package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/types"
)

// WriteMarket renders a market run in format. Table formats render the one
// table t; XLSX and JSON carry both tables.
func WriteMarket(w io.Writer, f Format, t Table, weapons, armor []types.PricedItem, opts Options) error {
	items := weapons
	if t == TableArmor {
		items = armor
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, t, items, opts)
	case FormatHTML:
		return WriteHTML(w, t, items, opts)
	case FormatBBCode:
		return WriteBBCode(w, items, opts)
	case FormatXLSX:
		return WriteMarketXLSX(w, weapons, armor, opts)
	case FormatJSON:
		return writeJSON(w, map[string]any{
			"weapons":   weapons,
			"armor":     armor,
			"discount":  opts.Discount,
			"armorMode": opts.ArmorMode,
		})
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteCache renders one side's cache quote in format
func WriteCache(w io.Writer, f Format, header CacheHeader, sheet cachequote.Sheet) error {
	switch f {
	case FormatCSV:
		return WriteCacheCSV(w, sheet)
	case FormatHTML:
		return WriteCacheHTML(w, header, sheet)
	case FormatXLSX:
		return WriteCacheXLSX(w, header, sheet)
	case FormatJSON:
		return writeJSON(w, map[string]any{"header": header, "quote": sheet})
	default:
		return fmt.Errorf("format %q is not available for cache quotes", f)
	}
}

// SideHeader builds the quote header of one war side
func SideHeader(ws *pipeline.WarSide) CacheHeader {
	h := CacheHeader{Faction: ws.Faction.Name}
	for _, l := range []*pipeline.Leader{ws.Leader, ws.CoLeader} {
		if l != nil {
			h.Leaders = append(h.Leaders, Person{ID: l.ID, Name: l.Name})
		}
	}
	return h
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
