package nightscout

import "time"

type Treatment struct {
	OID       string  `json:"_id,omitempty"`
	EventType string  `json:"eventType,omitempty"`
	Date      int64   `json:"date,omitempty"` // Unix millis.
	CreatedAt string  `json:"created_at,omitempty"`
	Insulin   float64 `json:"insulin,omitempty"`
	Carbs     float64 `json:"carbs,omitempty"`
	Glucose   float64 `json:"glucose,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	EnteredBy string  `json:"enteredBy,omitempty"`
}

// Time prefers the millisecond date and falls back to created_at.
func (t Treatment) Time() time.Time {
	if t.Date > 0 {
		return time.Unix(t.Date/1000, 0)
	}
	parsed, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// DeviceStatus mirrors the subset of the devicestatus document the service
// reads. Uploaders disagree on shape; the known OpenAPS/AndroidAPS, Loop and
// pump forms are modeled, everything else is dropped at decode time.
type DeviceStatus struct {
	OID             string    `json:"_id,omitempty"`
	Device          string    `json:"device,omitempty"`
	CreatedAt       string    `json:"created_at,omitempty"`
	OpenAPS         *OpenAPS  `json:"openaps,omitempty"`
	Loop            *Loop     `json:"loop,omitempty"`
	Pump            *Pump     `json:"pump,omitempty"`
	Uploader        *Uploader `json:"uploader,omitempty"`
	UploaderBattery *int      `json:"uploaderBattery,omitempty"`
}

func (ds DeviceStatus) Time() time.Time {
	parsed, err := time.Parse(time.RFC3339, ds.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

type OpenAPS struct {
	Suggested *Determination `json:"suggested,omitempty"`
	Enacted   *Determination `json:"enacted,omitempty"`
	IOB       *IOBValue      `json:"iob,omitempty"`
}

type Determination struct {
	IOB              *float64 `json:"IOB,omitempty"`
	COB              *float64 `json:"COB,omitempty"`
	SensitivityRatio *float64 `json:"sensitivityRatio,omitempty"`
	Rate             *float64 `json:"rate,omitempty"`
	Duration         *float64 `json:"duration,omitempty"`
	Timestamp        string   `json:"timestamp,omitempty"`
}

type IOBValue struct {
	IOB *float64 `json:"iob,omitempty"`
}

type COBValue struct {
	COB *float64 `json:"cob,omitempty"`
}

type Loop struct {
	Version   string    `json:"version,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	IOB       *IOBValue `json:"iob,omitempty"`
	COB       *COBValue `json:"cob,omitempty"`
}

type Pump struct {
	Reservoir *float64      `json:"reservoir,omitempty"`
	Battery   *PumpBattery  `json:"battery,omitempty"`
	IOB       *PumpIOB      `json:"iob,omitempty"`
	Extended  *PumpExtended `json:"extended,omitempty"`
}

type PumpBattery struct {
	Percent *int `json:"percent,omitempty"`
}

type PumpIOB struct {
	Bolus float64 `json:"bolus,omitempty"`
	Basal float64 `json:"basal,omitempty"`
}

type PumpExtended struct {
	BaseBasalRate *float64 `json:"BaseBasalRate,omitempty"`
}

type Uploader struct {
	Battery *int `json:"battery,omitempty"`
}

type ServerStatus struct {
	Status     string `json:"status,omitempty"`
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	ServerTime string `json:"serverTime,omitempty"`
}

type Profile struct {
	OID            string `json:"_id,omitempty"`
	DefaultProfile string `json:"defaultProfile,omitempty"`
	Units          string `json:"units,omitempty"`
	StartDate      string `json:"startDate,omitempty"`
}
