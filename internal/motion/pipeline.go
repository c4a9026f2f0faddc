// Package motion owns the motion-generation pipeline: request
// validation, statistics fetch, prompt construction, staged generation,
// and output normalization.
package motion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"motiongen/internal/llm"
	"motiongen/internal/prompt"
	"motiongen/internal/statistics"
	"motiongen/internal/trace"
)

// StatisticsFetcher is the slice of the statistics service the pipeline
// depends on.
type StatisticsFetcher interface {
	Fetch(ctx context.Context, keys []statistics.Key, municipalityID string, year int) (map[statistics.Key]statistics.Series, error)
}

// Pipeline runs one request through
// Validating → FetchingStatistics (optional) → Prompting → Generating →
// Formatting. Any step failure aborts the rest; partial results are
// never returned.
type Pipeline struct {
	stats               StatisticsFetcher
	gen                 llm.TextClient
	defaultMunicipality string
	trace               *trace.Logger
}

func NewPipeline(stats StatisticsFetcher, gen llm.TextClient, defaultMunicipality string, tr *trace.Logger) *Pipeline {
	return &Pipeline{
		stats:               stats,
		gen:                 gen,
		defaultMunicipality: defaultMunicipality,
		trace:               tr,
	}
}

type validated struct {
	topic            string
	keys             []statistics.Key
	year             int
	municipalityName string
	municipalityID   string
}

// Generate runs the full pipeline for one request. Errors are *Error
// with the originating kind and the step that failed.
func (p *Pipeline) Generate(ctx context.Context, req MotionRequest) (MotionResult, error) {
	start := time.Now()

	v, err := p.validate(req)
	if err != nil {
		return MotionResult{}, err
	}
	p.step(ctx, StepValidating, map[string]any{
		"topic":        v.topic,
		"municipality": v.municipalityName,
		"statistics":   len(v.keys),
	})

	var series map[statistics.Key]statistics.Series
	if len(v.keys) > 0 {
		series, err = p.stats.Fetch(ctx, v.keys, v.municipalityID, v.year)
		if err != nil {
			return MotionResult{}, p.classifyFetch(err)
		}
		p.step(ctx, StepFetchingStatistics, map[string]any{"series": len(series)})
	}

	pr := prompt.Build(v.topic, v.municipalityName, series)
	p.step(ctx, StepPrompting, map[string]any{"context_lines": len(pr.StatisticsContext)})

	raw, err := p.generate(ctx, v, pr)
	if err != nil {
		return MotionResult{}, err
	}
	p.step(ctx, StepGenerating, map[string]any{"chars": len(raw)})

	formatted := Format(raw)
	p.step(ctx, StepFormatting, map[string]any{
		"chars":      len(formatted),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return MotionResult{
		RawText:       raw,
		FormattedText: formatted,
		Model:         p.gen.Name(),
		Municipality:  v.municipalityName,
		Statistics:    series,
	}, nil
}

func (p *Pipeline) validate(req MotionRequest) (validated, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return validated{}, newError(KindInvalidRequest, StepValidating, "topic must not be empty", nil)
	}
	if req.Year < 0 {
		return validated{}, newError(KindInvalidRequest, StepValidating, fmt.Sprintf("invalid year %d", req.Year), nil)
	}

	seen := make(map[statistics.Key]struct{}, len(req.Statistics))
	keys := make([]statistics.Key, 0, len(req.Statistics))
	for _, raw := range req.Statistics {
		k, err := statistics.ParseKey(raw)
		if err != nil {
			return validated{}, newError(KindInvalidRequest, StepValidating,
				fmt.Sprintf("unknown statistic key %q", raw), err)
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	name := strings.TrimSpace(req.Municipality)
	if name == "" {
		name = p.defaultMunicipality
	}
	id, ok := statistics.MunicipalityID(name)
	if !ok {
		return validated{}, newError(KindInvalidRequest, StepValidating,
			fmt.Sprintf("unknown municipality %q, must be a municipality in Värmland", name), nil)
	}

	return validated{
		topic:            topic,
		keys:             keys,
		year:             req.Year,
		municipalityName: strings.ToLower(name),
		municipalityID:   id,
	}, nil
}

func (p *Pipeline) classifyFetch(err error) error {
	if errors.Is(err, statistics.ErrUnknownStatistic) {
		return newError(KindInvalidRequest, StepFetchingStatistics, "", err)
	}
	return newError(KindUpstreamUnavailable, StepFetchingStatistics, "", err)
}

// generate runs the staged chain: suggestion from the topic, a full
// draft from the suggestion, and — when statistics were fetched — an
// improved version integrating them. Each stage goes through the full
// retry policy of the wrapped client.
func (p *Pipeline) generate(ctx context.Context, v validated, pr prompt.GenerationPrompt) (string, error) {
	suggestion, err := p.complete(ctx, "suggestion", pr.Instructions, pr.Topic)
	if err != nil {
		return "", err
	}
	draft, err := p.complete(ctx, "draft", prompt.RoleDraft, suggestion)
	if err != nil {
		return "", err
	}
	if len(pr.StatisticsContext) == 0 {
		return draft, nil
	}
	improved, err := p.complete(ctx, "improve", prompt.RoleImprove,
		"Motion:\n"+draft+"\n\nStatistik och ekonomisk analys:"+pr.StatisticsSummary())
	if err != nil {
		return "", err
	}
	return improved, nil
}

func (p *Pipeline) complete(ctx context.Context, stage, system, user string) (string, error) {
	text, err := p.gen.Complete(llm.WithStage(ctx, stage), system, user)
	if err != nil {
		return "", p.classifyGeneration(stage, err)
	}
	return text, nil
}

func (p *Pipeline) classifyGeneration(stage string, err error) error {
	msg := fmt.Sprintf("stage %s: %v", stage, err)
	if llm.IsPermanent(err) {
		return newError(KindGenerationRejected, StepGenerating, msg, err)
	}
	return newError(KindGenerationUnavailable, StepGenerating, msg, err)
}

func (p *Pipeline) step(ctx context.Context, s Step, fields map[string]any) {
	p.trace.Append(trace.RequestID(ctx), "pipeline", string(s), fields)
}
