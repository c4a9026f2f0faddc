package statistics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"motiongen/internal/kolada"
)

// fakeAPI serves values from a (kpi, year) table; anything absent is
// kolada.ErrNoData.
type fakeAPI struct {
	data   map[string]map[int]float64
	latest map[string]int
	err    error
}

func (f *fakeAPI) MunicipalityData(ctx context.Context, kpiID, municipalityID string, year int) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if v, ok := f.data[kpiID][year]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: %s/%d", kolada.ErrNoData, kpiID, year)
}

func (f *fakeAPI) LatestYear(ctx context.Context, kpiID, municipalityID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if y, ok := f.latest[kpiID]; ok {
		return y, nil
	}
	return 0, kolada.ErrNoData
}

func TestFetch_PartialDataIsNotAnError(t *testing.T) {
	api := &fakeAPI{data: map[string]map[int]float64{
		"N01900": {2023: 95000},
		// N07403 missing entirely
	}}
	svc := NewService(api)

	out, err := svc.Fetch(context.Background(), []Key{KeyPopulation, KeySafety}, "1715", 2023)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if out[KeyPopulation].Value == nil || *out[KeyPopulation].Value != 95000 {
		t.Fatalf("population = %+v", out[KeyPopulation])
	}
	if out[KeySafety].Value != nil {
		t.Fatalf("safety should be absent, got %+v", out[KeySafety])
	}
}

func TestFetch_AllMissingIsUpstreamUnavailable(t *testing.T) {
	svc := NewService(&fakeAPI{})
	_, err := svc.Fetch(context.Background(), []Key{KeyPopulation, KeySafety}, "1715", 2023)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestFetch_UnknownKey(t *testing.T) {
	svc := NewService(&fakeAPI{})
	_, err := svc.Fetch(context.Background(), []Key{Key("crime-rate")}, "1715", 2023)
	if !errors.Is(err, ErrUnknownStatistic) {
		t.Fatalf("err = %v, want ErrUnknownStatistic", err)
	}
}

func TestFetch_YearFallback(t *testing.T) {
	api := &fakeAPI{data: map[string]map[int]float64{
		"N01900": {2021: 94000},
	}}
	svc := NewService(api)

	out, err := svc.Fetch(context.Background(), []Key{KeyPopulation}, "1715", 2023)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	s := out[KeyPopulation]
	if s.Value == nil || *s.Value != 94000 || s.Year != 2021 {
		t.Fatalf("expected 2021 fallback value, got %+v", s)
	}
}

func TestFetch_FallbackBounded(t *testing.T) {
	api := &fakeAPI{data: map[string]map[int]float64{
		"N01900": {2019: 93000}, // 4 years back, beyond the bound
	}}
	svc := NewService(api)

	_, err := svc.Fetch(context.Background(), []Key{KeyPopulation}, "1715", 2023)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable past fallback window", err)
	}
}

func TestFetch_LatestYearResolution(t *testing.T) {
	api := &fakeAPI{
		data:   map[string]map[int]float64{"N01900": {2024: 96000}},
		latest: map[string]int{"N01900": 2024},
	}
	svc := NewService(api)

	out, err := svc.Fetch(context.Background(), []Key{KeyPopulation}, "1715", 0)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if out[KeyPopulation].Year != 2024 {
		t.Fatalf("year = %d, want latest 2024", out[KeyPopulation].Year)
	}
}

func TestFetch_ImplausibleValueTreatedAsAbsent(t *testing.T) {
	api := &fakeAPI{data: map[string]map[int]float64{
		"N00914": {2023: 250}, // unemployment over 100%
	}}
	svc := NewService(api)

	_, err := svc.Fetch(context.Background(), []Key{KeyUnemployment}, "1715", 2023)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want implausible value treated as absent", err)
	}
}

func TestFetch_Trend(t *testing.T) {
	api := &fakeAPI{data: map[string]map[int]float64{
		"N00914": {2023: 7.4, 2022: 8.1},
	}}
	svc := NewService(api)

	out, err := svc.Fetch(context.Background(), []Key{KeyUnemployment}, "1715", 2023)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	s := out[KeyUnemployment]
	if s.Previous == nil || *s.Previous != 8.1 || s.PreviousYear != 2022 {
		t.Fatalf("trend = %+v, want previous 8.1 (2022)", s)
	}
}

func TestFetch_EmptyKeys(t *testing.T) {
	svc := NewService(&fakeAPI{err: errors.New("unreachable")})
	out, err := svc.Fetch(context.Background(), nil, "1715", 2023)
	if err != nil || len(out) != 0 {
		t.Fatalf("got %v, %v; want empty result without upstream calls", out, err)
	}
}
