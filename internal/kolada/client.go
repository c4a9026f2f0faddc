// Package kolada is a read-only client for the Kolada v2 open-data API.
// See: https://github.com/Hypergene/kolada
package kolada

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultBaseURL = "https://api.kolada.se/v2"

// maxPerPage is Kolada's documented response cap. Queries issued here are
// bounded by kpi+municipality(+year), so one page always suffices; the
// client never assumes unbounded result sets.
const maxPerPage = 5000

const metadataCacheSize = 100

var (
	// ErrNoData reports that the queried kpi/municipality/year
	// combination has no value.
	ErrNoData = errors.New("kolada: no data for query")
	// ErrInvalidKPI reports an unrecognized KPI id.
	ErrInvalidKPI = errors.New("kolada: invalid kpi")
)

// KPIMetadata describes one KPI as published by Kolada.
type KPIMetadata struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	OperatingArea       string `json:"operating_area"`
	Perspective         string `json:"perspective"`
	HasMunicipalityData bool   `json:"has_municipality_data"`
}

// Client queries the Kolada v2 API. Metadata lookups are cached in a
// threadsafe LRU since KPI definitions are effectively static.
type Client struct {
	http    *http.Client
	baseURL string
	meta    *lru.Cache[string, KPIMetadata]
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cache, _ := lru.New[string, KPIMetadata](metadataCacheSize)
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		meta:    cache,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "motiongen-kolada/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kolada: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kolada: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("kolada: decode response: %w", err)
	}
	return nil
}

// dataValue handles both response shapes Kolada has used: a nested
// per-gender values list and a flat value field.
type dataValue struct {
	Year   int      `json:"year"`
	Period int      `json:"period"`
	Value  *float64 `json:"value"`
	Values []struct {
		Gender string   `json:"gender"`
		Value  *float64 `json:"value"`
	} `json:"values"`
}

func (d dataValue) year() int {
	if d.Year != 0 {
		return d.Year
	}
	return d.Period
}

func (d dataValue) value() (float64, bool) {
	for _, v := range d.Values {
		if v.Value != nil && (v.Gender == "" || v.Gender == "T") {
			return *v.Value, true
		}
	}
	if d.Value != nil {
		return *d.Value, true
	}
	return 0, false
}

type dataResponse struct {
	Values []dataValue `json:"values"`
}

// KPIMetadata fetches metadata for one KPI, served from cache when seen
// before.
func (c *Client) KPIMetadata(ctx context.Context, kpiID string) (KPIMetadata, error) {
	if m, ok := c.meta.Get(kpiID); ok {
		return m, nil
	}
	var resp struct {
		Values []KPIMetadata `json:"values"`
	}
	if err := c.get(ctx, "kpi/"+url.PathEscape(kpiID), nil, &resp); err != nil {
		return KPIMetadata{}, err
	}
	if len(resp.Values) == 0 {
		return KPIMetadata{}, fmt.Errorf("%w: %q", ErrInvalidKPI, kpiID)
	}
	m := resp.Values[0]
	c.meta.Add(kpiID, m)
	return m, nil
}

// MunicipalityData returns the value for one kpi/municipality/year.
// Missing data is ErrNoData; transport and server failures come back as
// plain errors.
func (c *Client) MunicipalityData(ctx context.Context, kpiID, municipalityID string, year int) (float64, error) {
	params := url.Values{}
	params.Set("kpi", kpiID)
	params.Set("municipality", municipalityID)
	params.Set("year", strconv.Itoa(year))
	params.Set("per_page", strconv.Itoa(maxPerPage))

	var resp dataResponse
	if err := c.get(ctx, "data/v1/kpi", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Values) == 0 {
		return 0, fmt.Errorf("%w: kpi %s, municipality %s, year %d", ErrNoData, kpiID, municipalityID, year)
	}
	v, ok := resp.Values[0].value()
	if !ok {
		return 0, fmt.Errorf("%w: kpi %s, municipality %s, year %d", ErrNoData, kpiID, municipalityID, year)
	}
	return v, nil
}

// AvailableYears lists years with published data for a kpi/municipality,
// newest first.
func (c *Client) AvailableYears(ctx context.Context, kpiID, municipalityID string) ([]int, error) {
	params := url.Values{}
	params.Set("kpi", kpiID)
	params.Set("municipality", municipalityID)
	params.Set("per_page", strconv.Itoa(maxPerPage))

	var resp dataResponse
	if err := c.get(ctx, "data/v1/kpi", params, &resp); err != nil {
		return nil, err
	}
	seen := make(map[int]struct{})
	years := make([]int, 0, len(resp.Values))
	for _, v := range resp.Values {
		y := v.year()
		if y == 0 {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// LatestYear returns the most recent year that actually has a value.
func (c *Client) LatestYear(ctx context.Context, kpiID, municipalityID string) (int, error) {
	years, err := c.AvailableYears(ctx, kpiID, municipalityID)
	if err != nil {
		return 0, err
	}
	for _, y := range years {
		if _, err := c.MunicipalityData(ctx, kpiID, municipalityID, y); err == nil {
			return y, nil
		}
	}
	return 0, fmt.Errorf("%w: kpi %s, municipality %s", ErrNoData, kpiID, municipalityID)
}
