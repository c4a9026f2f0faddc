package motion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"motiongen/internal/llm"
	"motiongen/internal/statistics"
)

type fetcherSpy struct {
	calls  int
	keys   []statistics.Key
	munID  string
	year   int
	result map[statistics.Key]statistics.Series
	err    error
}

func (f *fetcherSpy) Fetch(ctx context.Context, keys []statistics.Key, municipalityID string, year int) (map[statistics.Key]statistics.Series, error) {
	f.calls++
	f.keys = keys
	f.munID = municipalityID
	f.year = year
	return f.result, f.err
}

func ptr(v float64) *float64 { return &v }

func TestGenerate_WithoutStatistics(t *testing.T) {
	fetcher := &fetcherSpy{}
	var stages []string
	gen := &llm.FakeClient{Reply: func(system, user string) (string, error) {
		switch {
		case system == "": // never expected
			t.Fatal("empty system prompt")
		case strings.Contains(system, "politisk strateg"):
			stages = append(stages, "suggestion")
		case strings.Contains(system, "framgångsrika kommunala motioner"):
			stages = append(stages, "draft")
		default:
			stages = append(stages, "improve")
		}
		return "Motion om " + user, nil
	}}
	p := NewPipeline(fetcher, gen, "karlstad", nil)

	res, err := p.Generate(context.Background(), MotionRequest{Topic: "cykelvägar"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher called %d times for a request without statistics", fetcher.calls)
	}
	if len(stages) != 2 || stages[0] != "suggestion" || stages[1] != "draft" {
		t.Fatalf("unexpected stage sequence %v", stages)
	}
	if res.Municipality != "karlstad" {
		t.Fatalf("municipality = %q, want default", res.Municipality)
	}
	if res.Model != "FakeLLM" {
		t.Fatalf("model = %q", res.Model)
	}
}

func TestGenerate_EndToEndWithStatistics(t *testing.T) {
	fetcher := &fetcherSpy{result: map[statistics.Key]statistics.Series{
		statistics.KeySafety: {
			Key:            statistics.KeySafety,
			MunicipalityID: "1715",
			Year:           2023,
			Value:          ptr(87.3),
		},
	}}
	calls := 0
	gen := &llm.FakeClient{Reply: func(system, user string) (string, error) {
		calls++
		if calls < 3 {
			return "utkast", nil
		}
		// Final improve stage echoes the statistics block with dot
		// decimals and sloppy spacing, as a real backend might.
		return "Motion om trygghet\n\n\n\nI Karlstad anmäldes 87.3 våldsbrott per 100 000 invånare (2023)", nil
	}}
	p := NewPipeline(fetcher, gen, "karlstad", nil)

	res, err := p.Generate(context.Background(), MotionRequest{
		Topic:      "trygghet",
		Statistics: []string{"safety"},
		Year:       2023,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 generation stages, got %d", calls)
	}
	if fetcher.calls != 1 || fetcher.munID != "1715" || fetcher.year != 2023 {
		t.Fatalf("unexpected fetch: calls=%d mun=%q year=%d", fetcher.calls, fetcher.munID, fetcher.year)
	}
	if !strings.Contains(res.FormattedText, "87,3") {
		t.Fatalf("formatted text kept dot decimal: %q", res.FormattedText)
	}
	if strings.Contains(res.FormattedText, "\n\n\n") {
		t.Fatalf("formatted text kept blank run: %q", res.FormattedText)
	}
	if !strings.Contains(res.RawText, "87.3") {
		t.Fatalf("raw text should be unformatted: %q", res.RawText)
	}
}

func TestGenerate_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  MotionRequest
	}{
		{"empty topic", MotionRequest{Topic: "   "}},
		{"negative year", MotionRequest{Topic: "x", Year: -1}},
		{"unknown statistic", MotionRequest{Topic: "x", Statistics: []string{"crime-rate"}}},
		{"unknown municipality", MotionRequest{Topic: "x", Municipality: "stockholm"}},
	}
	fetcher := &fetcherSpy{}
	p := NewPipeline(fetcher, llm.NewFakeClient(), "karlstad", nil)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := p.Generate(context.Background(), c.req)
			kind, ok := KindOf(err)
			if !ok || kind != KindInvalidRequest {
				t.Fatalf("err = %v, want kind %s", err, KindInvalidRequest)
			}
			var me *Error
			if !errors.As(err, &me) || me.Step != StepValidating {
				t.Fatalf("step = %v, want %s", err, StepValidating)
			}
		})
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetcher called %d times during validation failures", fetcher.calls)
	}
}

func TestGenerate_DuplicateKeysDeduplicated(t *testing.T) {
	fetcher := &fetcherSpy{result: map[statistics.Key]statistics.Series{
		statistics.KeyPopulation: {Key: statistics.KeyPopulation, Year: 2023, Value: ptr(95000)},
	}}
	p := NewPipeline(fetcher, llm.NewFakeClient(), "karlstad", nil)
	_, err := p.Generate(context.Background(), MotionRequest{
		Topic:      "befolkning",
		Statistics: []string{"population", "Population", " population "},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(fetcher.keys) != 1 {
		t.Fatalf("fetched keys = %v, want single deduplicated key", fetcher.keys)
	}
}

func TestGenerate_FetchFailureKinds(t *testing.T) {
	upstream := &fetcherSpy{err: statistics.ErrUpstreamUnavailable}
	p := NewPipeline(upstream, llm.NewFakeClient(), "karlstad", nil)
	_, err := p.Generate(context.Background(), MotionRequest{Topic: "x", Statistics: []string{"safety"}})
	if kind, _ := KindOf(err); kind != KindUpstreamUnavailable {
		t.Fatalf("kind = %v, want %s", err, KindUpstreamUnavailable)
	}
	var me *Error
	if !errors.As(err, &me) || me.Step != StepFetchingStatistics {
		t.Fatalf("step = %v, want %s", err, StepFetchingStatistics)
	}
}

func TestGenerate_GenerationFailureKinds(t *testing.T) {
	fetcher := &fetcherSpy{}

	rejected := &llm.FakeClient{Reply: func(system, user string) (string, error) {
		return "", llm.NewPermanentError(400, errors.New("bad request"))
	}}
	p := NewPipeline(fetcher, rejected, "karlstad", nil)
	_, err := p.Generate(context.Background(), MotionRequest{Topic: "x"})
	if kind, _ := KindOf(err); kind != KindGenerationRejected {
		t.Fatalf("kind = %v, want %s", err, KindGenerationRejected)
	}

	flaky := &llm.FakeClient{Reply: func(system, user string) (string, error) {
		return "", errors.New("connection reset")
	}}
	p = NewPipeline(fetcher, flaky, "karlstad", nil)
	_, err = p.Generate(context.Background(), MotionRequest{Topic: "x"})
	if kind, _ := KindOf(err); kind != KindGenerationUnavailable {
		t.Fatalf("kind = %v, want %s", err, KindGenerationUnavailable)
	}
	var me *Error
	if !errors.As(err, &me) || me.Step != StepGenerating {
		t.Fatalf("step = %v, want %s", err, StepGenerating)
	}
}
