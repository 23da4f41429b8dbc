package nightscout

// Extractors over devicestatus documents, newest first. The lookup chains
// mirror how the different uploaders (OpenAPS/AndroidAPS, Loop, plain pump
// uploads) report the same quantity in different places.

func LatestIOB(statuses []DeviceStatus) *float64 {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]

	if ds.OpenAPS != nil {
		if ds.OpenAPS.Suggested != nil && ds.OpenAPS.Suggested.IOB != nil {
			return ds.OpenAPS.Suggested.IOB
		}
		if ds.OpenAPS.IOB != nil && ds.OpenAPS.IOB.IOB != nil {
			return ds.OpenAPS.IOB.IOB
		}
		if ds.OpenAPS.Enacted != nil && ds.OpenAPS.Enacted.IOB != nil {
			return ds.OpenAPS.Enacted.IOB
		}
	}
	if ds.Loop != nil && ds.Loop.IOB != nil && ds.Loop.IOB.IOB != nil {
		return ds.Loop.IOB.IOB
	}
	if ds.Pump != nil && ds.Pump.IOB != nil {
		total := ds.Pump.IOB.Bolus + ds.Pump.IOB.Basal
		return &total
	}
	return nil
}

func LatestCOB(statuses []DeviceStatus) *float64 {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]

	if ds.OpenAPS != nil {
		if ds.OpenAPS.Suggested != nil && ds.OpenAPS.Suggested.COB != nil {
			return ds.OpenAPS.Suggested.COB
		}
		if ds.OpenAPS.Enacted != nil && ds.OpenAPS.Enacted.COB != nil {
			return ds.OpenAPS.Enacted.COB
		}
	}
	if ds.Loop != nil && ds.Loop.COB != nil && ds.Loop.COB.COB != nil {
		return ds.Loop.COB.COB
	}
	return nil
}

func SensitivityRatio(statuses []DeviceStatus) *float64 {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]
	if ds.OpenAPS != nil && ds.OpenAPS.Suggested != nil {
		return ds.OpenAPS.Suggested.SensitivityRatio
	}
	return nil
}

func PumpReservoir(statuses []DeviceStatus) *float64 {
	if len(statuses) == 0 || statuses[0].Pump == nil {
		return nil
	}
	return statuses[0].Pump.Reservoir
}

func PumpBatteryPercent(statuses []DeviceStatus) *int {
	if len(statuses) == 0 || statuses[0].Pump == nil || statuses[0].Pump.Battery == nil {
		return nil
	}
	return statuses[0].Pump.Battery.Percent
}

func BaseBasalRate(statuses []DeviceStatus) *float64 {
	if len(statuses) == 0 || statuses[0].Pump == nil || statuses[0].Pump.Extended == nil {
		return nil
	}
	return statuses[0].Pump.Extended.BaseBasalRate
}

func UploaderBatteryPercent(statuses []DeviceStatus) *int {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]
	if ds.Uploader != nil && ds.Uploader.Battery != nil {
		return ds.Uploader.Battery
	}
	return ds.UploaderBattery
}

type TempBasal struct {
	Rate      float64 `json:"rate"`
	Duration  float64 `json:"duration"`
	Timestamp string  `json:"timestamp,omitempty"`
}

func ActiveTempBasal(statuses []DeviceStatus) *TempBasal {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]
	if ds.OpenAPS == nil || ds.OpenAPS.Enacted == nil {
		return nil
	}
	enacted := ds.OpenAPS.Enacted
	if enacted.Rate == nil || enacted.Duration == nil {
		return nil
	}
	return &TempBasal{
		Rate:      *enacted.Rate,
		Duration:  *enacted.Duration,
		Timestamp: enacted.Timestamp,
	}
}

type LoopInfo struct {
	Type      string `json:"type"`
	Version   string `json:"version,omitempty"`
	Device    string `json:"device,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

func ActiveLoop(statuses []DeviceStatus) *LoopInfo {
	if len(statuses) == 0 {
		return nil
	}
	ds := statuses[0]

	if ds.OpenAPS != nil {
		return &LoopInfo{Type: "OpenAPS", Device: ds.Device, Timestamp: ds.CreatedAt}
	}
	if ds.Loop != nil {
		return &LoopInfo{
			Type:      "Loop",
			Version:   ds.Loop.Version,
			Device:    ds.Device,
			Timestamp: ds.Loop.Timestamp,
		}
	}
	return nil
}

// LastTreatment returns the newest treatment, optionally restricted to one
// event type. Treatments arrive newest first.
func LastTreatment(treatments []Treatment, eventType string) *Treatment {
	for i := range treatments {
		if eventType == "" || treatments[i].EventType == eventType {
			return &treatments[i]
		}
	}
	return nil
}
