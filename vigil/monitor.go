package vigil

import (
	"context"
	"sync"

	"nsight/vigil/pkg/diag"

	"go.uber.org/zap"
)

// Monitor runs the diagnostic probes and keeps the latest result.
type Monitor struct {
	Checker *diag.Checker
	Logger  *zap.Logger

	mu   sync.RWMutex
	last diag.Health
}

func (m *Monitor) RunCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), monitorTimeout)
	defer cancel()

	h := m.Checker.Check(ctx)

	m.mu.Lock()
	m.last = h
	m.mu.Unlock()

	if h.Overall != diag.LevelOK {
		m.Logger.Warn("pipeline degraded",
			zap.String("overall", string(h.Overall)),
			zap.String("glucose", h.Glucose.Message),
			zap.String("device", h.Device.Message),
		)
	}
}

func (m *Monitor) Health() diag.Health {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
