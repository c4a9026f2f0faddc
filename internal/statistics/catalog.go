// Package statistics maps recognized statistic keys to Kolada KPIs and
// renders fetched series into Swedish prose for the generation prompt.
package statistics

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Key identifies one recognized statistic category.
type Key string

const (
	KeyPopulation       Key = "population"
	KeySafety           Key = "safety"
	KeyEconomy          Key = "economy"
	KeyImmigration      Key = "immigration"
	KeyUnemployment     Key = "unemployment"
	KeySocialAssistance Key = "social-assistance"
	KeyTaxRate          Key = "tax-rate"
	KeyHousing          Key = "housing"
	KeySchoolResults    Key = "school-results"
	KeyElderlyCare      Key = "elderly-care"
	KeyCulture          Key = "culture"
)

// catalogOrder is the fixed enumeration order. Prompt context is always
// rendered in this order, never in request-submission order.
var catalogOrder = []Key{
	KeyPopulation,
	KeySafety,
	KeyEconomy,
	KeyImmigration,
	KeyUnemployment,
	KeySocialAssistance,
	KeyTaxRate,
	KeyHousing,
	KeySchoolResults,
	KeyElderlyCare,
	KeyCulture,
}

var ErrUnknownStatistic = errors.New("statistics: unknown statistic key")

// KPIConfig binds a statistic key to its Kolada KPI and presentation.
type KPIConfig struct {
	Name          string // Swedish display name
	KPI           string // Kolada KPI id
	Format        string // "number" or "percent"
	Template      string // uses {municipality} {value} {year}
	TrendTemplate string // uses {municipality} {previous_value} {previous_year} {current_value} {current_year}
	Min, Max      float64
}

var catalog = map[Key]KPIConfig{
	KeyPopulation: {
		Name:          "Befolkning",
		KPI:           "N01900",
		Format:        "number",
		Template:      "{municipality} har {value} invånare ({year})",
		TrendTemplate: "Befolkningsutveckling i {municipality}: {previous_value} ({previous_year}) → {current_value} ({current_year})",
		Min:           50000, Max: 150000,
	},
	KeySafety: {
		Name:          "Våldsbrott",
		KPI:           "N07403",
		Format:        "number",
		Template:      "I {municipality} anmäldes {value} våldsbrott per 100 000 invånare ({year})",
		TrendTemplate: "Utveckling av våldsbrott i {municipality}: {previous_value} ({previous_year}) → {current_value} ({current_year})",
		Min:           0, Max: 2000,
	},
	KeyEconomy: {
		Name:          "Ekonomiskt resultat",
		KPI:           "N03101",
		Format:        "percent",
		Template:      "{municipality}s ekonomiska resultat var {value}% av skatter och statsbidrag ({year})",
		TrendTemplate: "Ekonomisk utveckling i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           -10, Max: 10,
	},
	KeyImmigration: {
		Name:          "Utrikes födda",
		KPI:           "N02955",
		Format:        "percent",
		Template:      "{municipality} har {value}% utrikes födda invånare ({year})",
		TrendTemplate: "Utveckling utrikes födda i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           0, Max: 100,
	},
	KeyUnemployment: {
		Name:          "Arbetslöshet",
		KPI:           "N00914",
		Format:        "percent",
		Template:      "Arbetslösheten i {municipality} är {value}% ({year})",
		TrendTemplate: "Utveckling arbetslöshet i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           0, Max: 100,
	},
	KeySocialAssistance: {
		Name:          "Ekonomiskt bistånd",
		KPI:           "N31816",
		Format:        "percent",
		Template:      "{value}% av {municipality}s invånare erhöll ekonomiskt bistånd ({year})",
		TrendTemplate: "Utveckling ekonomiskt bistånd i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           0, Max: 100,
	},
	KeyTaxRate: {
		Name:          "Kommunal skattesats",
		KPI:           "N00406",
		Format:        "percent",
		Template:      "Den kommunala skattesatsen i {municipality} är {value}% ({year})",
		TrendTemplate: "Utveckling skattesats i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           15, Max: 35,
	},
	KeyHousing: {
		Name:          "Färdigställda bostäder",
		KPI:           "N07906",
		Format:        "number",
		Template:      "Under {year} färdigställdes {value} nya bostäder i {municipality}",
		TrendTemplate: "Utveckling bostadsbyggande i {municipality}: {previous_value} ({previous_year}) → {current_value} ({current_year})",
		Min:           0, Max: 2000,
	},
	KeySchoolResults: {
		Name:          "Skolresultat åk 9",
		KPI:           "N15419",
		Format:        "percent",
		Template:      "{value}% av eleverna i årskurs 9 i {municipality} uppnådde kunskapskraven i alla ämnen ({year})",
		TrendTemplate: "Utveckling skolresultat i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           0, Max: 100,
	},
	KeyElderlyCare: {
		Name:          "Brukarbedömning äldreomsorg",
		KPI:           "U23471",
		Format:        "percent",
		Template:      "{value}% av brukarna i {municipality} är nöjda med sitt särskilda boende ({year})",
		TrendTemplate: "Utveckling nöjdhet äldreboende i {municipality}: {previous_value}% ({previous_year}) → {current_value}% ({current_year})",
		Min:           0, Max: 100,
	},
	KeyCulture: {
		Name:          "Kulturverksamhet",
		KPI:           "N09100",
		Format:        "number",
		Template:      "{municipality} spenderar {value} kr per invånare på kulturverksamhet ({year})",
		TrendTemplate: "Utveckling kulturkostnad i {municipality}: {previous_value} kr/inv ({previous_year}) → {current_value} kr/inv ({current_year})",
		Min:           0, Max: 5000,
	},
}

// Keys returns all recognized keys in catalog enumeration order.
func Keys() []Key {
	out := make([]Key, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}

// Lookup returns the KPI configuration for a key.
func Lookup(k Key) (KPIConfig, bool) {
	cfg, ok := catalog[k]
	return cfg, ok
}

// Rank returns the key's position in the catalog enumeration order.
// Unknown keys sort last.
func Rank(k Key) int {
	for i, o := range catalogOrder {
		if o == k {
			return i
		}
	}
	return len(catalogOrder)
}

// ParseKey validates a raw statistic identifier against the catalog.
func ParseKey(raw string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := catalog[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, raw)
	}
	return k, nil
}

// varmlandMunicipalities maps municipality names to Kolada municipality
// ids, as configured for the Värmland region.
var varmlandMunicipalities = map[string]string{
	"arvika":       "1784",
	"eda":          "1730",
	"filipstad":    "1782",
	"forshaga":     "1763",
	"grums":        "1764",
	"hagfors":      "1783",
	"hammarö":      "1761",
	"karlstad":     "1715",
	"kil":          "1715",
	"kristinehamn": "1781",
	"munkfors":     "1762",
	"storfors":     "1760",
	"sunne":        "1766",
	"säffle":       "1785",
	"torsby":       "1737",
	"årjäng":       "1765",
}

// MunicipalityID resolves a municipality name (case-insensitive) to its
// Kolada id.
func MunicipalityID(name string) (string, bool) {
	id, ok := varmlandMunicipalities[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// MunicipalityTitle returns the display form of a municipality name
// (first rune upper-cased).
func MunicipalityTitle(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
