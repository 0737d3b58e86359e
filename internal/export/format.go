// Package export renders market tables and cache quotes as CSV, BBCode,
// HTML and XLSX.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/scolli03/rwmarket/internal/types"
)

// Format names an export format
type Format string

const (
	FormatCSV    Format = "csv"
	FormatHTML   Format = "html"
	FormatBBCode Format = "bbcode"
	FormatXLSX   Format = "xlsx"
	FormatJSON   Format = "json"
)

// ParseFormat validates an export format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatHTML, FormatBBCode, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension of the format
func (f Format) Extension() string {
	if f == FormatBBCode {
		return "txt"
	}
	return string(f)
}

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with thousands separators: 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatMillions renders n in millions with two decimals: "134.83m"
func FormatMillions(n int64) string {
	return decimal.NewFromInt(n).Shift(-6).StringFixed(2) + "m"
}

// FormatMoney renders "$1,234,567 (1.23m)"
func FormatMoney(n int64) string {
	return "$" + FormatNumber(n) + " (" + FormatMillions(n) + ")"
}

// FormatPercent renders a signed one-decimal percentage, "N/A" for nil
func FormatPercent(p *float64) string {
	if p == nil {
		return types.TextNotAvailable
	}
	return fmt.Sprintf("%+.1f%%", *p)
}

// RarityLetter maps a rarity colour to its one-letter suffix
func RarityLetter(rarity string) string {
	switch strings.ToLower(rarity) {
	case "yellow":
		return "Y"
	case "orange":
		return "O"
	case "red":
		return "R"
	default:
		return ""
	}
}

// RarityColor maps a rarity colour to the text colour used in HTML tables
func RarityColor(rarity string) string {
	switch strings.ToLower(rarity) {
	case "yellow":
		return "#fbbf24"
	case "orange":
		return "#fb923c"
	case "red":
		return "#ef4444"
	default:
		return "#f5f5f5"
	}
}

func stat(v *float64) string {
	if v == nil {
		return "-"
	}
	return types.FormatFloat(v)
}

// WeaponStats renders "dmg / acc / qual" with "-" for missing values
func WeaponStats(it types.ClassifiedItem) string {
	return stat(it.Damage) + " / " + stat(it.Accuracy) + " / " + stat(it.Quality)
}

// ArmorStats renders "armor / qual" with "-" for missing values
func ArmorStats(it types.ClassifiedItem) string {
	return stat(it.Defense) + " / " + stat(it.Quality)
}

// QualityText renders quality with the rarity letter, "-" when missing
func QualityText(it types.ClassifiedItem) string {
	if it.Quality == nil {
		return "-"
	}
	return types.FormatFloat(it.Quality) + RarityLetter(it.Rarity)
}
