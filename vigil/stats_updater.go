package vigil

import (
	"context"
	"sync"

	"nsight/vigil/pkg/report"

	"go.uber.org/zap"
)

// StatsUpdater recomputes the per-period reports and keeps the latest of
// each for serving. Computation is pure; only the cache needs the lock.
type StatsUpdater struct {
	Builder *report.Builder
	Logger  *zap.Logger

	mu      sync.RWMutex
	reports map[string]*report.Report
}

func (su *StatsUpdater) UpdateAll() error {
	for _, p := range report.Periods {
		r, err := su.Builder.ForPeriod(context.Background(), p)
		if err != nil {
			su.Logger.Debug("unable to build report", zap.String("period", p.Name), zap.Error(err))
			continue
		}

		su.mu.Lock()
		if su.reports == nil {
			su.reports = make(map[string]*report.Report)
		}
		su.reports[p.Name] = r
		su.mu.Unlock()
	}
	return nil
}

// Report returns the last computed report for the period, if any.
func (su *StatsUpdater) Report(period string) (*report.Report, bool) {
	su.mu.RLock()
	defer su.mu.RUnlock()
	r, ok := su.reports[period]
	return r, ok
}
