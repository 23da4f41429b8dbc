package defs

import (
	"time"

	"go.uber.org/zap"
)

const DefaultDB = "nsight"

// Intervals.
const (
	LookbackInterval = -24 * time.Hour
	FetcherInterval  = 1 * time.Minute
	StatsInterval    = 6 * time.Hour
	MonitorInterval  = 5 * time.Minute
	TimeoutInterval  = 2 * time.Second
)

// Units.
const (
	UnitMgdl = "mg/dL"
	UnitMmol = "mmol/L"
)

type Config struct {
	Nightscout NightscoutConfig `yaml:"nightscout"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Glucose    GlucoseConfig    `yaml:"glucose"`
	DDNS       DDNSConfig       `yaml:"ddns"`
	HTTPAddr   string           `yaml:"httpAddress"`
	RangesFile string           `yaml:"rangesFile"`
	Timezone   string           `yaml:"timezone"`
	Logger     *zap.Logger      `yaml:"_,omitempty"`
}

type NightscoutConfig struct {
	URL       string `yaml:"url"`
	APISecret string `yaml:"apiSecret"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GlucoseConfig carries the display unit and target range. The bounds are
// expected in the display unit; small mmol/L bounds are normalized before
// range math.
type GlucoseConfig struct {
	Unit      string  `yaml:"unit"`
	TargetMin float64 `yaml:"targetMin"`
	TargetMax float64 `yaml:"targetMax"`
}

type DDNSConfig struct {
	Enabled   bool   `yaml:"enabled"`
	UpdateURL string `yaml:"updateURL"`
	Interval  int    `yaml:"intervalHours"`
}
