package statistics

import (
	"strings"
	"testing"
)

func TestCatalogComplete(t *testing.T) {
	keys := Keys()
	if len(keys) != len(catalog) {
		t.Fatalf("enumeration order lists %d keys, catalog has %d", len(keys), len(catalog))
	}
	for _, k := range keys {
		cfg, ok := Lookup(k)
		if !ok {
			t.Fatalf("key %q in enumeration order but not in catalog", k)
		}
		if cfg.KPI == "" || cfg.Name == "" || cfg.Template == "" || cfg.TrendTemplate == "" {
			t.Errorf("key %q has incomplete config: %+v", k, cfg)
		}
		if cfg.Format != "number" && cfg.Format != "percent" {
			t.Errorf("key %q has unknown format %q", k, cfg.Format)
		}
		if cfg.Min >= cfg.Max {
			t.Errorf("key %q has empty plausibility range [%v, %v]", k, cfg.Min, cfg.Max)
		}
	}
}

func TestRank_StableOrder(t *testing.T) {
	if Rank(KeyPopulation) != 0 {
		t.Fatalf("population rank = %d, want 0", Rank(KeyPopulation))
	}
	if Rank(KeySafety) >= Rank(KeyTaxRate) {
		t.Fatalf("safety must order before tax-rate")
	}
	if Rank(Key("nope")) != len(catalogOrder) {
		t.Fatalf("unknown key must rank last")
	}
}

func TestParseKey(t *testing.T) {
	for _, raw := range []string{"population", "POPULATION", "  Population  "} {
		k, err := ParseKey(raw)
		if err != nil || k != KeyPopulation {
			t.Fatalf("ParseKey(%q) = %q, %v", raw, k, err)
		}
	}
	if _, err := ParseKey("crime-rate"); err == nil {
		t.Fatal("ParseKey accepted an unknown key")
	}
}

func TestMunicipalityID(t *testing.T) {
	id, ok := MunicipalityID("Karlstad")
	if !ok || id != "1715" {
		t.Fatalf("Karlstad = %q, %v", id, ok)
	}
	if _, ok := MunicipalityID("stockholm"); ok {
		t.Fatal("municipalities outside Värmland must not resolve")
	}
	if id, ok := MunicipalityID(" säffle "); !ok || id != "1785" {
		t.Fatalf("säffle = %q, %v", id, ok)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		value  float64
		format string
		want   string
	}{
		{95000, "number", "95 000"},
		{1234567, "number", "1 234 567"},
		{999, "number", "999"},
		{87.6, "number", "88"},
		{7.4, "percent", "7.4"},
		{7, "percent", "7.0"},
	}
	for _, c := range cases {
		if got := FormatValue(c.value, c.format); got != c.want {
			t.Errorf("FormatValue(%v, %q) = %q, want %q", c.value, c.format, got, c.want)
		}
	}
}

func TestFormatStatistic(t *testing.T) {
	v := 95000.0
	got := FormatStatistic(Series{Key: KeyPopulation, Year: 2023, Value: &v}, "karlstad")
	want := "Karlstad har 95 000 invånare (2023)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatStatistic_Absent(t *testing.T) {
	got := FormatStatistic(Series{Key: KeySafety, Year: 2023}, "arvika")
	if !strings.Contains(got, "inte tillgänglig") || !strings.Contains(got, "Arvika") {
		t.Fatalf("absent series rendering = %q", got)
	}
}

func TestFormatTrend(t *testing.T) {
	cur, prev := 7.4, 8.1
	s := Series{Key: KeyUnemployment, Year: 2023, Value: &cur, Previous: &prev, PreviousYear: 2022}
	got := FormatTrend(s, "karlstad")
	for _, frag := range []string{"8.1", "2022", "7.4", "2023"} {
		if !strings.Contains(got, frag) {
			t.Fatalf("trend %q missing %q", got, frag)
		}
	}
	s.Previous = nil
	if got := FormatTrend(s, "karlstad"); got != "" {
		t.Fatalf("trend without previous value must be empty, got %q", got)
	}
}
