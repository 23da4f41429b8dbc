package vigil

import (
	"context"
	"fmt"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/mg"
	"nsight/vigil/pkg/stats"

	"go.uber.org/zap"
)

const (
	HighGlucoseLabel = "High Glucose"
	LowGlucoseLabel  = "Low Glucose"

	// No repeat alert for the same condition inside this window.
	alertCooldown = time.Hour
)

type AlerterStore interface {
	mg.ReadingStore
	mg.AlertStore
}

type Alerter struct {
	Store AlerterStore

	Logger        *zap.Logger
	GlucoseConfig defs.GlucoseConfig
}

// AnalyzeGlucose checks the most recent stored reading against the target
// range and records an alert when it falls outside, at most once per
// cooldown window per condition.
func (a *Alerter) AnalyzeGlucose() error {
	ctx := context.Background()
	now := time.Now()

	readings, err := a.Store.ReadReadings(ctx, now.Add(defs.LookbackInterval), now)
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		return nil
	}

	alerts, _ := a.Store.ReadAlerts(ctx, now.Add(-alertCooldown), now)
	lowAlert, highAlert := true, true
	for _, alert := range alerts {
		switch alert.Label {
		case LowGlucoseLabel:
			lowAlert = false
		case HighGlucoseLabel:
			highAlert = false
		}
	}

	low, high := a.bounds()
	recentVal := readings[len(readings)-1].Mgdl

	if recentVal >= high && highAlert {
		return a.record(HighGlucoseLabel,
			fmt.Sprintf("current value: %.0f ≥ %.0f", recentVal, high))
	} else if recentVal <= low && lowAlert {
		return a.record(LowGlucoseLabel,
			fmt.Sprintf("current value: %.0f ≤ %.0f", recentVal, low))
	}

	return nil
}

// bounds normalizes the configured target range to mg/dL, with the same
// magnitude heuristic the statistics engine applies.
func (a *Alerter) bounds() (float64, float64) {
	low, high := a.GlucoseConfig.TargetMin, a.GlucoseConfig.TargetMax
	if a.GlucoseConfig.Unit == defs.UnitMmol {
		if low < 20 {
			low = stats.MmolToMgdl(low)
		}
		if high < 20 {
			high = stats.MmolToMgdl(high)
		}
	}
	return low, high
}

func (a *Alerter) record(label, reason string) error {
	_, err := a.Store.WriteAlert(context.Background(), &defs.Alert{
		Time:   time.Now(),
		Label:  label,
		Reason: reason,
	})
	if err != nil {
		return err
	}

	a.Logger.Warn("glucose alert", zap.String("label", label), zap.String("reason", reason))
	return nil
}
