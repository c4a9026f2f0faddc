package statistics

import (
	"context"
	"errors"
	"fmt"
	"log"

	"motiongen/internal/kolada"
)

// ErrUpstreamUnavailable reports that the statistics upstream produced
// nothing usable: unreachable, or every requested series missing.
// Partial data is usable; total data loss is not.
var ErrUpstreamUnavailable = errors.New("statistics: upstream unavailable")

// Series is one fetched statistic. Value nil means the data point is
// absent upstream. Previous/PreviousYear carry best-effort trend data.
type Series struct {
	Key            Key
	MunicipalityID string
	Year           int
	Value          *float64
	Previous       *float64
	PreviousYear   int
}

// KoladaAPI is the slice of the Kolada client the service depends on.
type KoladaAPI interface {
	MunicipalityData(ctx context.Context, kpiID, municipalityID string, year int) (float64, error)
	LatestYear(ctx context.Context, kpiID, municipalityID string) (int, error)
}

// Service fetches named statistic series for a municipality and year.
type Service struct {
	api KoladaAPI

	// maxFallbackYears bounds how far back a fetch may reach when the
	// requested year has no data.
	maxFallbackYears int
}

func NewService(api KoladaAPI) *Service {
	return &Service{api: api, maxFallbackYears: 2}
}

// Fetch returns one Series per requested key. A single missing data
// point never fails the request; the key maps to an absent Series. If
// every requested series is missing the whole fetch reports
// ErrUpstreamUnavailable. year 0 means "latest available" and is
// resolved per KPI.
func (s *Service) Fetch(ctx context.Context, keys []Key, municipalityID string, year int) (map[Key]Series, error) {
	if len(keys) == 0 {
		return map[Key]Series{}, nil
	}
	out := make(map[Key]Series, len(keys))
	present := 0
	for _, k := range keys {
		cfg, ok := Lookup(k)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatistic, k)
		}
		series := s.fetchOne(ctx, k, cfg, municipalityID, year)
		if series.Value != nil {
			present++
		}
		out[k] = series
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if present == 0 {
		return nil, fmt.Errorf("%w: no data for any of %d requested series", ErrUpstreamUnavailable, len(keys))
	}
	return out, nil
}

func (s *Service) fetchOne(ctx context.Context, k Key, cfg KPIConfig, municipalityID string, year int) Series {
	series := Series{Key: k, MunicipalityID: municipalityID, Year: year}

	if year == 0 {
		latest, err := s.api.LatestYear(ctx, cfg.KPI, municipalityID)
		if err != nil {
			log.Printf("statistics: latest year for %s (%s): %v", k, cfg.KPI, err)
			return series
		}
		year = latest
		series.Year = year
	}

	// Walk back a bounded number of years when the requested one is empty.
	for y := year; y >= year-s.maxFallbackYears; y-- {
		v, err := s.api.MunicipalityData(ctx, cfg.KPI, municipalityID, y)
		if err != nil {
			if !errors.Is(err, kolada.ErrNoData) {
				log.Printf("statistics: fetch %s (%s) year %d: %v", k, cfg.KPI, y, err)
			}
			continue
		}
		if v < cfg.Min || v > cfg.Max {
			log.Printf("statistics: %s value %v outside plausible range [%v, %v], treating as absent", k, v, cfg.Min, cfg.Max)
			continue
		}
		series.Year = y
		series.Value = &v
		break
	}
	if series.Value == nil {
		return series
	}

	// Trend data is best effort; its absence is never an error.
	if prev, err := s.api.MunicipalityData(ctx, cfg.KPI, municipalityID, series.Year-1); err == nil {
		if prev >= cfg.Min && prev <= cfg.Max {
			series.Previous = &prev
			series.PreviousYear = series.Year - 1
		}
	}
	return series
}
