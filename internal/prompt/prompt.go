// Package prompt assembles generation prompts from a topic and fetched
// statistics. Building is pure: no randomness, no clocks, no network.
package prompt

import (
	"sort"
	"strings"

	"motiongen/internal/statistics"
)

// StatLine is one statistic rendered for the prompt context.
type StatLine struct {
	Key   statistics.Key
	Text  string
	Trend string
}

// GenerationPrompt is immutable once built. StatisticsContext is ordered
// by the fixed catalog enumeration, not request-submission order, so
// identical inputs always produce identical prompts.
type GenerationPrompt struct {
	Topic             string
	StatisticsContext []StatLine
	Instructions      string
}

// Build renders the topic plus fetched series into a GenerationPrompt.
func Build(topic string, municipalityName string, series map[statistics.Key]statistics.Series) GenerationPrompt {
	keys := make([]statistics.Key, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return statistics.Rank(keys[i]) < statistics.Rank(keys[j])
	})

	lines := make([]StatLine, 0, len(keys))
	for _, k := range keys {
		s := series[k]
		lines = append(lines, StatLine{
			Key:   k,
			Text:  statistics.FormatStatistic(s, municipalityName),
			Trend: statistics.FormatTrend(s, municipalityName),
		})
	}
	return GenerationPrompt{
		Topic:             topic,
		StatisticsContext: lines,
		Instructions:      RoleSuggest,
	}
}

// StatisticsSummary renders the prompt's statistics context as the
// structured Swedish block appended to the improve stage input. Empty
// when no statistics were fetched.
func (p GenerationPrompt) StatisticsSummary() string {
	if len(p.StatisticsContext) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nStatistiskt underlag och ekonomisk analys:\n")
	for _, line := range p.StatisticsContext {
		b.WriteString("\n• ")
		b.WriteString(line.Text)
		if line.Trend != "" {
			b.WriteString("\n  Trend: ")
			b.WriteString(line.Trend)
			b.WriteString("\n  Implikationer för förslaget: [Analysera hur trenden påverkar motionens genomförbarhet]")
		}
	}
	return b.String()
}

// Fixed role templates for the three generation stages.
const (
	// RoleSuggest asks the backend for one feasible motion proposal.
	RoleSuggest = "Du är en erfaren politisk strateg med djup förståelse för kommunal politik. " +
		"Din uppgift är att föreslå EN genomförbar motion som:\n" +
		"1. Ligger inom kommunens juridiska befogenheter\n" +
		"2. Har en realistisk ekonomisk kalkyl\n" +
		"3. Kan implementeras inom en rimlig tidsram\n" +
		"4. Har stöd i tillgänglig statistik\n" +
		"5. Bidrar till kommunens långsiktiga mål\n\n" +
		"OBS: Generera endast EN sammanhållen motion, inte flera separata motioner.\n\n" +
		"Du har tillgång till följande statistiktyper från Kolada som ska användas för att stödja förslaget:\n" +
		"- Befolkning (N01900): Demografisk utveckling\n" +
		"- Trygghet (N07403): Antal anmälda våldsbrott\n" +
		"- Ekonomi (N03101): Kommunens resultat\n" +
		"- Invandring (N02955): Andel utrikes födda\n" +
		"- Arbetslöshet (N00914): Arbetslöshetssiffror\n" +
		"- Socialbidrag (N31816): Ekonomiskt bistånd\n" +
		"- Skattesats (N00406): Kommunal skattesats\n\n" +
		"Föreslå 2-3 relevanta statistiktyper som stärker argumentationen."

	// RoleDraft turns the suggestion into a full motion draft.
	RoleDraft = "Du är en expert på framgångsrika kommunala motioner. Din uppgift är att skapa " +
		"EN övertygande motion som har hög sannolikhet att bli bifallen. " +
		"OBS: Skapa endast EN sammanhållen motion, inte flera separata motioner.\n" +
		"\nFokusera på:" +
		"\n1. Tydlig koppling till kommunens ansvar och befogenheter" +
		"\n2. Konkret ekonomisk genomförbarhet med kostnadsuppskattningar" +
		"\n3. Realistisk implementeringsplan" +
		"\n4. Statistiskt underbyggd argumentation" +
		"\n5. Tydliga, mätbara mål" +
		"\n\nMotionen ska innehålla:" +
		"\n- En koncis bakgrundsbeskrivning med relevant statistik" +
		"\n- Tydlig problemformulering" +
		"\n- Konkreta att-satser med:" +
		"\n  * Specificerade åtgärder" +
		"\n  * Uppskattad kostnad" +
		"\n  * Förslag på finansiering" +
		"\n  * Tidsplan för genomförande" +
		"\n\nAnvänd formellt språk och var konkret. Sammanfatta alla åtgärder i EN sammanhållen motion."

	// RoleImprove integrates the fetched statistics into the draft.
	RoleImprove = "Du är en expert på att förbättra kommunala motioner för maximal genomslagskraft. " +
		"Din uppgift är att:\n" +
		"1. Integrera statistiken naturligt i argumentationen\n" +
		"2. Stärka den ekonomiska genomförbarheten\n" +
		"3. Tydliggöra kopplingen till kommunens mål\n" +
		"4. Säkerställa att varje att-sats är:\n" +
		"   - Konkret och mätbar\n" +
		"   - Ekonomiskt realistisk\n" +
		"   - Tidsmässigt avgränsad\n" +
		"5. Behåll motionens grundstruktur men förstärk argumentationen\n" +
		"6. Lägg till konkreta exempel på liknande framgångsrika projekt\n" +
		"7. Inkludera förslag på uppföljning och utvärdering"
)
