package leads

import (
	"bytes"
	"strconv"
	"strings"
	"time"
)

const utf8BOM = "\ufeff"

var csvHeaders = []string{"ID", "Date", "Statut", "Nom", "Téléphone", "Ville", "Service", "Fréquence", "Heures", "Prix estimé", "Message"}

// ExportCSV renders leads for spreadsheet import: semicolon separated, every
// cell quoted, UTF-8 with a byte order mark. Dates are shown in loc.
func ExportCSV(items []Lead, loc *time.Location) []byte {
	if loc == nil {
		loc = time.UTC
	}
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	buf.WriteString(strings.Join(csvHeaders, ";"))

	for _, l := range items {
		price := ""
		if l.PriceEstimate > 0 {
			price = formatNumber(l.PriceEstimate) + "€"
		}
		hours := ""
		if l.Hours > 0 {
			hours = formatNumber(l.Hours)
		}
		row := []string{
			l.ID,
			l.CreatedAt.In(loc).Format("02/01/2006"),
			l.Status.Label(),
			l.Name,
			l.Phone,
			l.City,
			l.ServiceLabel,
			l.FrequencyLabel,
			hours,
			price,
			l.Message,
		}
		buf.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				buf.WriteByte(';')
			}
			buf.WriteString(quoteCell(cell))
		}
	}
	return buf.Bytes()
}

// ExportFilename names the download after the current day in loc.
func ExportFilename(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return "demandes_laura_" + now.In(loc).Format("2006-01-02") + ".csv"
}

func quoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
