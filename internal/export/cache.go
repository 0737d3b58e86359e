package export

import (
	"encoding/csv"
	"html/template"
	"io"
	"strconv"

	"github.com/scolli03/rwmarket/internal/cachequote"
)

// ProfileURL is the Torn profile link for a player id
const ProfileURL = "https://www.torn.com/profiles.php?XID="

// Person is a linked name in the cache quote header
type Person struct {
	ID   int64
	Name string
}

// CacheHeader titles a cache quote table
type CacheHeader struct {
	Faction string
	Leaders []Person
}

type cacheRow struct {
	Total, Name, Quantity, Price, Buy, Shade string
}

var cacheTmpl = template.Must(template.New("cache").Parse(`<table style="width: 100%; border-collapse: collapse; margin: 10px 0;">
<thead>
<tr style="background-color: #1a1a1a; border-bottom: 2px solid #d97706;">
<th colspan="5" style="padding: 10px; border: 1px solid #444; text-align: center; color: #d97706; font-weight: bold; font-size: 16px;">{{.Header.Faction}}
{{- range .Header.Leaders}} | <a href="{{$.ProfileURL}}{{.ID}}" target="_blank" style="color: #4dabf7; text-decoration: none;">{{.Name}}</a>{{end}}</th>
</tr>
<tr style="background-color: #1a1a1a; border-bottom: 2px solid #d97706;">
<th style="padding: 10px; border: 1px solid #444; text-align: left; color: #d97706;">Total Buy Price</th>
<th style="padding: 10px; border: 1px solid #444; text-align: left; color: #d97706;">Cache Name</th>
<th style="padding: 10px; border: 1px solid #444; text-align: center; color: #d97706;">Quantity</th>
<th style="padding: 10px; border: 1px solid #444; text-align: right; color: #d97706;">Cheapest Listed Price</th>
<th style="padding: 10px; border: 1px solid #444; text-align: right; color: #d97706;">Buy Price</th>
</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr style="background-color: {{.Shade}}; color: #f5f5f5;">
<td style="padding: 8px; border: 1px solid #444; text-align: left; color: #fbbf24; font-weight: bold;">{{.Total}}</td>
<td style="padding: 8px; border: 1px solid #444;">{{.Name}}</td>
<td style="padding: 8px; border: 1px solid #444; text-align: center;">{{.Quantity}}</td>
<td style="padding: 8px; border: 1px solid #444; text-align: right; color: #6ee7b7;">{{.Price}}</td>
<td style="padding: 8px; border: 1px solid #444; text-align: right; color: #fbbf24;">{{.Buy}}</td>
</tr>
{{- end}}
<tr style="background-color: #1a1a1a; border-top: 2px solid #d97706;">
<td style="padding: 10px; border: 1px solid #444; text-align: left; color: #fbbf24; font-weight: bold; font-size: 18px;">{{.Rounded}}</td>
<td colspan="4" style="padding: 10px; border: 1px solid #444; text-align: right; color: #d97706; font-weight: bold;">Total Buy Price (Rounded)</td>
</tr>
</tbody></table>
`))

// WriteCacheHTML writes a cache quote as an HTML fragment
func WriteCacheHTML(w io.Writer, header CacheHeader, sheet cachequote.Sheet) error {
	rows := make([]cacheRow, len(sheet.Rows))
	for i, r := range sheet.Rows {
		shade := "#2d2d2d"
		if i%2 == 1 {
			shade = "#353535"
		}
		rows[i] = cacheRow{
			Total:    FormatMoney(r.LineTotal),
			Name:     r.Name,
			Quantity: strconv.FormatInt(r.Quantity, 10),
			Price:    FormatMoney(r.Price),
			Buy:      FormatMoney(r.BuyPrice),
			Shade:    shade,
		}
	}
	return cacheTmpl.Execute(w, map[string]any{
		"Header":     header,
		"ProfileURL": ProfileURL,
		"Rows":       rows,
		"Rounded":    FormatMoney(sheet.RoundedTotal),
	})
}

// WriteCacheCSV writes a cache quote as CSV with a trailing total row
func WriteCacheCSV(w io.Writer, sheet cachequote.Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Cache Name", "Quantity", "Listed Price", "Buy Price", "Total Buy Price", "Deviation", "Note"}); err != nil {
		return err
	}
	for _, r := range sheet.Rows {
		if err := cw.Write([]string{
			r.Name,
			strconv.FormatInt(r.Quantity, 10),
			strconv.FormatInt(r.Price, 10),
			strconv.FormatInt(r.BuyPrice, 10),
			strconv.FormatInt(r.LineTotal, 10),
			FormatPercent(r.Deviation),
			r.Note,
		}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Total", "", "", "", strconv.FormatInt(sheet.Total, 10), "", ""}); err != nil {
		return err
	}
	if err := cw.Write([]string{"Total (Rounded)", "", "", "", strconv.FormatInt(sheet.RoundedTotal, 10), "", ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
