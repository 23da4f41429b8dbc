package defs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TimePoint interface {
	GetTime() time.Time
}

// Entry is a single glucose sample as delivered by the Nightscout
// entries endpoint. SGV is the sensor glucose value in mg/dL; a zero
// value means the entry carried no usable reading.
type Entry struct {
	OID        string  `json:"_id,omitempty"`
	SGV        float64 `json:"sgv,omitempty"`
	Date       int64   `json:"date,omitempty"` // Unix millis.
	DateString string  `json:"dateString,omitempty"`
	Direction  string  `json:"direction,omitempty"`
	Delta      float64 `json:"delta,omitempty"`
	Device     string  `json:"device,omitempty"`
	Type       string  `json:"type,omitempty"`
}

func (e Entry) GetTime() time.Time {
	return time.Unix(e.Date/1000, 0)
}

// Reading is the stored form of an entry.
type Reading struct {
	ID        *primitive.ObjectID `bson:"_id,omitempty"`
	Time      time.Time           `bson:"time"`
	Mgdl      float64             `bson:"mgdl"`
	Direction string              `bson:"direction"`
	Device    string              `bson:"device"`
}

func (r *Reading) GetTime() time.Time {
	return r.Time
}

type Treatment struct {
	ID        *primitive.ObjectID `bson:"_id,omitempty"`
	Time      time.Time           `bson:"time"`
	EventType string              `bson:"eventType"`
	Insulin   float64             `bson:"insulin"`
	Carbs     float64             `bson:"carbs"`
	Notes     string              `bson:"notes"`
	EnteredBy string              `bson:"enteredBy"`
}

func (t *Treatment) GetTime() time.Time {
	return t.Time
}

type Alert struct {
	ID     *primitive.ObjectID `bson:"_id,omitempty"`
	Time   time.Time           `bson:"time"`
	Label  string              `bson:"label"`
	Reason string              `bson:"reason"`
}

func (al *Alert) GetTime() time.Time {
	return al.Time
}

// DeviceSnapshot is the stored distillation of a devicestatus document.
type DeviceSnapshot struct {
	ID              *primitive.ObjectID `bson:"_id,omitempty"`
	Time            time.Time           `bson:"time"`
	Device          string              `bson:"device"`
	IOB             *float64            `bson:"iob,omitempty"`
	COB             *float64            `bson:"cob,omitempty"`
	Reservoir       *float64            `bson:"reservoir,omitempty"`
	PumpBattery     *int                `bson:"pumpBattery,omitempty"`
	UploaderBattery *int                `bson:"uploaderBattery,omitempty"`
	BasalRate       *float64            `bson:"basalRate,omitempty"`
	LoopType        string              `bson:"loopType,omitempty"`
}

func (ds *DeviceSnapshot) GetTime() time.Time {
	return ds.Time
}
