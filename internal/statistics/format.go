package statistics

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a raw KPI value per the catalog's format type:
// "number" rounds to an integer with spaces as thousands separators,
// "percent" keeps one decimal (dot-decimal; the motion formatter
// converts to locale comma at the end of the pipeline).
func FormatValue(value float64, format string) string {
	switch format {
	case "number":
		return groupThousands(int64(value + 0.5))
	case "percent":
		return strconv.FormatFloat(value, 'f', 1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatStatistic renders one fetched series as a Swedish sentence using
// the key's catalog template. Absent values yield an availability note
// rather than an error.
func FormatStatistic(s Series, municipalityName string) string {
	cfg, ok := Lookup(s.Key)
	if !ok {
		return ""
	}
	title := MunicipalityTitle(municipalityName)
	if s.Value == nil {
		return fmt.Sprintf("Statistik för %s är inte tillgänglig för %s år %d",
			strings.ToLower(cfg.Name), title, s.Year)
	}
	r := strings.NewReplacer(
		"{municipality}", title,
		"{value}", FormatValue(*s.Value, cfg.Format),
		"{year}", strconv.Itoa(s.Year),
	)
	return r.Replace(cfg.Template)
}

// FormatTrend renders the year-over-year development line. Empty when no
// previous-year value was available.
func FormatTrend(s Series, municipalityName string) string {
	cfg, ok := Lookup(s.Key)
	if !ok || s.Value == nil || s.Previous == nil {
		return ""
	}
	r := strings.NewReplacer(
		"{municipality}", MunicipalityTitle(municipalityName),
		"{previous_value}", FormatValue(*s.Previous, cfg.Format),
		"{previous_year}", strconv.Itoa(s.PreviousYear),
		"{current_value}", FormatValue(*s.Value, cfg.Format),
		"{current_year}", strconv.Itoa(s.Year),
	)
	return r.Replace(cfg.TrendTemplate)
}
