package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/scolli03/rwmarket/internal/sorting"
	"github.com/scolli03/rwmarket/internal/types"
)

// Table selects which market table is exported
type Table string

const (
	TableWeapons Table = "weapons"
	TableArmor   Table = "armor"
)

// ParseTable validates a table name, defaulting to weapons
func ParseTable(s string) (Table, error) {
	switch Table(strings.ToLower(s)) {
	case "", TableWeapons:
		return TableWeapons, nil
	case TableArmor:
		return TableArmor, nil
	default:
		return "", fmt.Errorf("unknown table %q: must be weapons or armor", s)
	}
}

// Options controls market table exports
type Options struct {
	IncludeListed bool
	Discount      float64
	ArmorMode     sorting.ArmorMode
}

func statsHeader(t Table) string {
	if t == TableArmor {
		return "Armor/Qual"
	}
	return "Dmg/Acc/Qual"
}

func statsText(t Table, it types.ClassifiedItem) string {
	if t == TableArmor {
		return ArmorStats(it)
	}
	return WeaponStats(it)
}

// WriteCSV writes a market table as CSV:
// Item Name,<stats>,Bonus[,Listed Price],Price
func WriteCSV(w io.Writer, t Table, items []types.PricedItem, opts Options) error {
	cw := csv.NewWriter(w)

	header := []string{"Item Name", statsHeader(t), "Bonus"}
	if opts.IncludeListed {
		header = append(header, "Listed Price")
	}
	header = append(header, "Price")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, it := range items {
		row := []string{it.Name, statsText(t, it.ClassifiedItem), it.Bonus}
		if opts.IncludeListed {
			row = append(row, strconv.FormatInt(it.ListedPrice, 10))
		}
		row = append(row, strconv.FormatInt(it.Price, 10))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBBCode writes a Torn forum table, one tag per line
func WriteBBCode(w io.Writer, items []types.PricedItem, opts Options) error {
	var b strings.Builder
	cell := func(s string) { b.WriteString("[td]" + s + "[/td]\n") }

	b.WriteString("[table]\n[tr]\n")
	cell("Item Name")
	cell("Quality")
	cell("Bonus")
	cell("Listed Price")
	cell(fmt.Sprintf("Price (-%s%%)", strconv.FormatFloat(opts.Discount*100, 'f', -1, 64)))
	b.WriteString("[/tr]\n")

	for _, it := range items {
		b.WriteString("[tr]\n")
		cell(it.Name)
		cell(types.FormatFloat(it.Quality))
		cell(it.Bonus)
		cell("$" + FormatNumber(it.ListedPrice))
		cell("$" + FormatNumber(it.Price))
		b.WriteString("[/tr]\n")
	}
	b.WriteString("[/table]")

	_, err := io.WriteString(w, b.String())
	return err
}

type htmlRow struct {
	Group    string
	Name     string
	Color    string
	Stats    []htmlStat
	Bonus    string
	Listed   string
	Price    string
	Shade    string
	NewGroup bool
}

type htmlStat struct {
	Text  string
	Color string
}

var marketTmpl = template.Must(template.New("market").Parse(`<table style="width: 100%; border-collapse: collapse; margin: 10px 0;">
<thead><tr style="background-color: #1a1a1a; border-bottom: 2px solid #d97706;">
<th style="padding: 10px; border: 1px solid #444; text-align: left; color: #d97706;">Item Name</th>
<th style="padding: 10px; border: 1px solid #444; text-align: center; color: #d97706;">{{.StatsHeader}}</th>
<th style="padding: 10px; border: 1px solid #444; text-align: center; color: #d97706;">Bonus</th>
{{- if .IncludeListed}}
<th style="padding: 10px; border: 1px solid #444; text-align: right; color: #d97706;">Listed Price</th>
{{- end}}
<th style="padding: 10px; border: 1px solid #444; text-align: right; color: #d97706;">Price</th>
</tr></thead>
<tbody>
{{- range .Rows}}
{{- if .NewGroup}}
<tr style="background-color: #1a1a1a;"><td colspan="{{$.Columns}}" style="padding: 8px; border: 1px solid #444; color: #d97706; font-weight: bold; text-align: center;">{{.Group}}</td></tr>
{{- end}}
<tr style="background-color: {{.Shade}}; color: #f5f5f5;">
<td style="padding: 8px; border: 1px solid #444; color: {{.Color}};">{{.Name}}</td>
<td style="padding: 8px; border: 1px solid #444; text-align: center;">{{range .Stats}}<span style="color: {{.Color}}; margin-right: 8px;">{{.Text}}</span>{{end}}</td>
<td style="padding: 8px; border: 1px solid #444; text-align: center;">{{.Bonus}}</td>
{{- if $.IncludeListed}}
<td style="padding: 8px; border: 1px solid #444; text-align: right; color: #6ee7b7;">{{.Listed}}</td>
{{- end}}
<td style="padding: 8px; border: 1px solid #444; text-align: right; color: #6ee7b7; font-weight: bold;">{{.Price}}</td>
</tr>
{{- end}}
</tbody></table>
`))

// WriteHTML writes a market table as an HTML fragment with a header row
// for every slot (or armor set) group
func WriteHTML(w io.Writer, t Table, items []types.PricedItem, opts Options) error {
	rows := make([]htmlRow, 0, len(items))
	prev := ""
	for i, it := range items {
		group := string(it.Slot)
		if t == TableArmor && opts.ArmorMode == sorting.ArmorBySet {
			group = it.ArmorSet
		}
		color := RarityColor(it.Rarity)

		var stats []htmlStat
		if t == TableArmor {
			stats = []htmlStat{{stat(it.Defense), "#10b981"}, {QualityText(it.ClassifiedItem), color}}
		} else {
			stats = []htmlStat{{stat(it.Damage), "#a78bfa"}, {stat(it.Accuracy), "#4dabf7"}, {QualityText(it.ClassifiedItem), color}}
		}

		shade := "#2d2d2d"
		if i%2 == 1 {
			shade = "#353535"
		}
		rows = append(rows, htmlRow{
			Group:    group,
			NewGroup: i == 0 || group != prev,
			Name:     it.Name,
			Color:    color,
			Stats:    stats,
			Bonus:    it.Bonus,
			Listed:   "$" + FormatNumber(it.ListedPrice),
			Price:    "$" + FormatNumber(it.Price),
			Shade:    shade,
		})
		prev = group
	}

	columns := 4
	if opts.IncludeListed {
		columns = 5
	}
	return marketTmpl.Execute(w, map[string]any{
		"StatsHeader":   statsHeader(t),
		"IncludeListed": opts.IncludeListed,
		"Columns":       columns,
		"Rows":          rows,
	})
}
