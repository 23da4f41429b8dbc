package vigil

import (
	"context"
	"fmt"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/mg"
	"nsight/vigil/pkg/nightscout"

	"go.uber.org/zap"
)

const treatmentFetchCount = 50

type FetcherStore interface {
	mg.ReadingStore
	mg.TreatmentStore
	mg.DeviceStatusStore
}

type Fetcher struct {
	Source nightscout.Source
	Store  FetcherStore

	Logger *zap.Logger
}

// FetchAndLoad pulls the latest entries, treatments and device status from
// the server and loads anything new into the store. Entries arrive newest
// first, so the first already-seen entry ends the walk.
func (f *Fetcher) FetchAndLoad() error {
	ctx := context.Background()

	entries, _ := f.Source.Entries(ctx, nightscout.DefaultCount)
	for _, e := range entries {
		if e.SGV == 0 {
			continue
		}
		res, err := f.Store.WriteReading(ctx, &defs.Reading{
			Time:      e.GetTime(),
			Mgdl:      e.SGV,
			Direction: e.Direction,
			Device:    e.Device,
		})
		if err != nil {
			return fmt.Errorf("unable to write glucose to store: %w", err)
		}
		if res.MatchedCount > 0 { // Matched.
			break
		}
	}

	treatments, _ := f.Source.Treatments(ctx, treatmentFetchCount)
	for _, t := range treatments {
		_, err := f.Store.WriteTreatment(ctx, &defs.Treatment{
			Time:      t.Time(),
			EventType: t.EventType,
			Insulin:   t.Insulin,
			Carbs:     t.Carbs,
			Notes:     t.Notes,
			EnteredBy: t.EnteredBy,
		})
		if err != nil {
			return fmt.Errorf("unable to write treatment to store: %w", err)
		}
	}

	statuses, _ := f.Source.DeviceStatus(ctx, 1)
	if snap := snapshot(statuses); snap != nil {
		if _, err := f.Store.WriteDeviceSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("unable to write device snapshot to store: %w", err)
		}
	}

	return nil
}

func snapshot(statuses []nightscout.DeviceStatus) *defs.DeviceSnapshot {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]

	snap := &defs.DeviceSnapshot{
		Time:            ds.Time(),
		Device:          ds.Device,
		IOB:             nightscout.LatestIOB(statuses),
		COB:             nightscout.LatestCOB(statuses),
		Reservoir:       nightscout.PumpReservoir(statuses),
		PumpBattery:     nightscout.PumpBatteryPercent(statuses),
		UploaderBattery: nightscout.UploaderBatteryPercent(statuses),
		BasalRate:       nightscout.BaseBasalRate(statuses),
	}
	if loop := nightscout.ActiveLoop(statuses); loop != nil {
		snap.LoopType = loop.Type
	}
	return snap
}
