// Package report derives classified metric reports over fixed reporting
// periods from the raw entry stream.
package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/nightscout"
	"nsight/vigil/pkg/ranges"
	"nsight/vigil/pkg/stats"

	"go.uber.org/zap"
)

type Period struct {
	Name  string
	Hours int
}

var Periods = []Period{
	{Name: "daily", Hours: 24},
	{Name: "weekly", Hours: 168},
	{Name: "monthly", Hours: 720},
	{Name: "quarterly", Hours: 2160},
}

func PeriodByName(name string) (Period, bool) {
	for _, p := range Periods {
		if p.Name == name {
			return p, true
		}
	}
	return Period{}, false
}

// Metric is one derived value with its qualitative status. Value is null
// when the underlying series was too short for the metric.
type Metric struct {
	Value   *float64       `json:"value"`
	Unit    string         `json:"unit,omitempty"`
	Samples int            `json:"samples"`
	Status  *ranges.Status `json:"status,omitempty"`
}

type Report struct {
	Period      string            `json:"period"`
	Hours       int               `json:"period_hours"`
	GeneratedAt time.Time         `json:"generated_at"`
	Samples     int               `json:"samples"`
	Unit        string            `json:"unit"`
	Metrics     map[string]Metric `json:"metrics"`
}

type Comparison struct {
	First       *Report            `json:"first"`
	Second      *Report            `json:"second"`
	Differences map[string]float64 `json:"differences"`
}

type Source interface {
	EntriesSince(ctx context.Context, since time.Time, count int) ([]defs.Entry, error)
}

type Builder struct {
	Source  Source
	Tables  ranges.Tables
	Glucose defs.GlucoseConfig

	Logger *zap.Logger
}

// ForPeriod pulls the period's entries and derives the full classified
// metric set. A period with no usable readings still yields a report, with
// every metric null.
func (b *Builder) ForPeriod(ctx context.Context, p Period) (*Report, error) {
	since := time.Now().Add(-time.Duration(p.Hours) * time.Hour)
	entries, err := b.Source.EntriesSince(ctx, since, nightscout.PeriodCount)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch entries for %s report: %w", p.Name, err)
	}

	values := stats.ExtractValues(entries)
	summary := stats.Compute(values, b.Glucose.TargetMin, b.Glucose.TargetMax, b.Glucose.Unit)

	b.Logger.Debug("built report",
		zap.String("period", p.Name),
		zap.Int("entries", len(entries)),
		zap.Int("samples", summary.Samples),
	)

	return &Report{
		Period:      p.Name,
		Hours:       p.Hours,
		GeneratedAt: time.Now(),
		Samples:     summary.Samples,
		Unit:        summary.Unit,
		Metrics:     Classified(summary, b.Tables),
	}, nil
}

// Compare builds both reports and the per-metric deltas (first minus
// second) for the comparable metrics.
func (b *Builder) Compare(ctx context.Context, first, second Period) (*Comparison, error) {
	r1, err := b.ForPeriod(ctx, first)
	if err != nil {
		return nil, err
	}
	r2, err := b.ForPeriod(ctx, second)
	if err != nil {
		return nil, err
	}

	diffs := make(map[string]float64)
	for _, name := range []string{"mean_bg", "ea1c", "time_in_range", "cv"} {
		m1, m2 := r1.Metrics[name], r2.Metrics[name]
		if m1.Value == nil || m2.Value == nil {
			continue
		}
		diffs[name+"_change"] = math.Round((*m1.Value-*m2.Value)*10) / 10
	}

	return &Comparison{First: r1, Second: r2, Differences: diffs}, nil
}

// Classified attaches a reference-range status to each metric of a
// summary. Time below and above range use reversed colors since a low
// percentage is the good outcome there. The median carries no table.
func Classified(s stats.Summary, tables ranges.Tables) map[string]Metric {
	metrics := map[string]Metric{
		"ea1c":             classify(s.EA1c, "%", s.Samples, tables.EA1c, false),
		"mean_bg":          classify(s.MeanBG, s.Unit, s.Samples, tables.MeanBG, false),
		"median_bg":        {Value: s.MedianBG, Unit: s.Unit, Samples: s.Samples},
		"stdev":            classify(s.Stdev, s.Unit, s.Samples, tables.Stdev, false),
		"cv":               classify(s.CV, "%", s.Samples, tables.CV, false),
		"gvi":              classify(s.GVI, "", s.Samples, tables.GVI, false),
		"pgs":              classify(s.PGS, "", s.Samples, tables.PGS, false),
		"time_in_range":    classify(s.TimeInRange, "%", s.Samples, tables.TimeInRange, false),
		"time_below_range": classify(s.TimeBelowRange, "%", s.Samples, tables.TimeBelowRange, true),
		"time_above_range": classify(s.TimeAboveRange, "%", s.Samples, tables.TimeAboveRange, true),
	}
	return metrics
}

func classify(value *float64, unit string, samples int, table ranges.Table, reverse bool) Metric {
	m := Metric{Value: value, Unit: unit, Samples: samples}
	if value == nil {
		return m
	}
	st := ranges.Classify(*value, table, reverse)
	m.Status = &st
	return m
}
