// Package diag reports on the health of the monitored pipeline: whether
// the server answers, and how stale its glucose and closed-loop data are.
package diag

import (
	"context"
	"fmt"
	"math"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/nightscout"

	"go.uber.org/zap"
)

const (
	warnAge = 10 * time.Minute
	critAge = 25 * time.Minute
)

type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
	LevelError    Level = "error"
)

var levelPriority = map[Level]int{
	LevelOK:       1,
	LevelWarning:  2,
	LevelCritical: 3,
	LevelError:    3,
}

// WorstLevel picks the more severe of two levels, favoring the first on
// ties.
func WorstLevel(a, b Level) Level {
	if levelPriority[a] >= levelPriority[b] {
		return a
	}
	return b
}

type Freshness struct {
	Level      Level    `json:"status"`
	AgeMinutes *float64 `json:"age_minutes"`
	LastUpdate string   `json:"last_update,omitempty"`
	Message    string   `json:"message"`
}

// EntryFreshness grades the age of the newest glucose entry.
func EntryFreshness(entries []defs.Entry, now time.Time) Freshness {
	if len(entries) == 0 {
		return Freshness{Level: LevelCritical, Message: "No glucose data"}
	}

	last := entries[0].GetTime()
	return ageFreshness(last, now, "glucose reading")
}

// DeviceFreshness grades the age of the newest devicestatus document.
func DeviceFreshness(statuses []nightscout.DeviceStatus, now time.Time) Freshness {
	if len(statuses) == 0 {
		return Freshness{Level: LevelCritical, Message: "No device data"}
	}

	last := statuses[0].Time()
	if last.IsZero() {
		return Freshness{Level: LevelError, Message: "Could not parse device timestamp"}
	}
	return ageFreshness(last, now, "device update")
}

func ageFreshness(last, now time.Time, what string) Freshness {
	age := now.Sub(last)

	level := LevelOK
	switch {
	case age > critAge:
		level = LevelCritical
	case age > warnAge:
		level = LevelWarning
	}

	minutes := roundTenth(age.Minutes())
	return Freshness{
		Level:      level,
		AgeMinutes: &minutes,
		LastUpdate: last.UTC().Format(time.RFC3339),
		Message:    fmt.Sprintf("Last %s %.1f minutes ago", what, minutes),
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

type Health struct {
	Available bool                     `json:"available"`
	Server    *nightscout.ServerStatus `json:"server,omitempty"`
	Glucose   Freshness                `json:"glucose"`
	Device    Freshness                `json:"device"`
	Overall   Level                    `json:"overall"`
}

type Source interface {
	Entries(ctx context.Context, count int) ([]defs.Entry, error)
	DeviceStatus(ctx context.Context, count int) ([]nightscout.DeviceStatus, error)
	Status(ctx context.Context) (*nightscout.ServerStatus, error)
}

type Checker struct {
	Source Source
	Logger *zap.Logger
}

// Check runs the availability and freshness probes. It never returns an
// error; degraded probes surface as levels on the result.
func (c *Checker) Check(ctx context.Context) Health {
	h := Health{}

	status, err := c.Source.Status(ctx)
	if err != nil {
		c.Logger.Debug("server status probe failed", zap.Error(err))
		h.Glucose = Freshness{Level: LevelError, Message: "Server unreachable"}
		h.Device = h.Glucose
		h.Overall = LevelError
		return h
	}
	h.Available = true
	h.Server = status

	now := time.Now()

	entries, err := c.Source.Entries(ctx, 1)
	if err != nil {
		c.Logger.Debug("entries probe failed", zap.Error(err))
		h.Glucose = Freshness{Level: LevelError, Message: "Could not fetch entries"}
	} else {
		h.Glucose = EntryFreshness(entries, now)
	}

	statuses, err := c.Source.DeviceStatus(ctx, 1)
	if err != nil {
		c.Logger.Debug("devicestatus probe failed", zap.Error(err))
		h.Device = Freshness{Level: LevelError, Message: "Could not fetch device status"}
	} else {
		h.Device = DeviceFreshness(statuses, now)
	}

	h.Overall = WorstLevel(h.Glucose.Level, h.Device.Level)
	return h
}
