// Package ranges classifies metric values against ordered reference-range
// tables. Bands may overlap or leave gaps; the first band containing the
// value wins, so declaration order is part of the table's meaning.
package ranges

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Colors.
const (
	Green      = "green"
	LightGreen = "lightgreen"
	Yellow     = "yellow"
	Red        = "red"
	Gray       = "gray"
)

// Band is one named reference range. A nil bound is unbounded on that
// side; both bounds are inclusive.
type Band struct {
	Name        string   `yaml:"name"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Color       string   `yaml:"color"`
	Description string   `yaml:"description"`
}

func (b Band) contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

type Table []Band

type Status struct {
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Classify scans table in declared order and returns the first band
// containing value. With reverse set, green and red swap; used for metrics
// where a low value is the good outcome. A value outside every band gets
// the gray unknown status.
func Classify(value float64, table Table, reverse bool) Status {
	for _, b := range table {
		if !b.contains(value) {
			continue
		}
		color := b.Color
		if reverse {
			switch color {
			case Green:
				color = Red
			case Red:
				color = Green
			}
		}
		return Status{Color: color, Description: b.Description}
	}
	return Status{Color: Gray, Description: "Unknown status"}
}

// Tables groups the reference tables per metric.
type Tables struct {
	EA1c           Table `yaml:"ea1c"`
	MeanBG         Table `yaml:"meanBg"`
	Stdev          Table `yaml:"stdev"`
	CV             Table `yaml:"cv"`
	GVI            Table `yaml:"gvi"`
	PGS            Table `yaml:"pgs"`
	TimeInRange    Table `yaml:"timeInRange"`
	TimeBelowRange Table `yaml:"timeBelowRange"`
	TimeAboveRange Table `yaml:"timeAboveRange"`
}

// Load reads table overrides from a yaml file on top of the defaults.
// Tables absent from the file keep their default bands.
func Load(path string) (Tables, error) {
	t := Defaults()

	file, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("unable to read ranges file: %w", err)
	}
	if err := yaml.Unmarshal(file, &t); err != nil {
		return t, fmt.Errorf("unable to parse ranges file: %w", err)
	}
	return t, nil
}

// Defaults returns the built-in clinical reference tables.
func Defaults() Tables {
	return Tables{
		EA1c: Table{
			{Name: "optimal", Max: f(5.7), Color: Green, Description: "Normal (Non-diabetic range)"},
			{Name: "prediabetes", Min: f(5.7), Max: f(6.4), Color: Yellow, Description: "Prediabetes range"},
			{Name: "diabetes_good_control", Min: f(6.5), Max: f(7.0), Color: Green, Description: "Diabetes - Good control"},
			{Name: "diabetes_acceptable", Min: f(7.0), Max: f(8.0), Color: Yellow, Description: "Diabetes - Acceptable control"},
			{Name: "diabetes_poor_control", Min: f(8.0), Color: Red, Description: "Diabetes - Poor control, needs adjustment"},
		},
		MeanBG: Table{
			{Name: "target", Min: f(70), Max: f(154), Color: Green, Description: "Target mean glucose"},
			{Name: "acceptable", Min: f(154), Max: f(183), Color: Yellow, Description: "Acceptable mean glucose"},
			{Name: "high", Min: f(183), Color: Red, Description: "High mean glucose"},
			{Name: "low", Max: f(70), Color: Red, Description: "Mean glucose too low"},
		},
		Stdev: Table{
			{Name: "low", Max: f(50), Color: Green, Description: "Low variability"},
			{Name: "moderate", Min: f(50), Max: f(70), Color: Yellow, Description: "Moderate variability"},
			{Name: "high", Min: f(70), Color: Red, Description: "High variability"},
		},
		CV: Table{
			{Name: "stable", Max: f(36), Color: Green, Description: "Stable glucose levels"},
			{Name: "moderate_variability", Min: f(36), Max: f(50), Color: Yellow, Description: "Moderate glucose variability"},
			{Name: "high_variability", Min: f(50), Color: Red, Description: "High glucose variability"},
		},
		GVI: Table{
			{Name: "low", Max: f(1.2), Color: Green, Description: "Low glycemic variability"},
			{Name: "moderate", Min: f(1.2), Max: f(1.5), Color: Yellow, Description: "Moderate glycemic variability"},
			{Name: "high", Min: f(1.5), Color: Red, Description: "High glycemic variability"},
		},
		PGS: Table{
			{Name: "excellent", Max: f(35), Color: Green, Description: "Excellent glycemic status (non-diabetic)"},
			{Name: "good", Min: f(35), Max: f(100), Color: LightGreen, Description: "Good glycemic status (diabetic)"},
			{Name: "poor", Min: f(100), Max: f(150), Color: Yellow, Description: "Poor glycemic status (diabetic)"},
			{Name: "very_poor", Min: f(150), Color: Red, Description: "Very poor glycemic status (diabetic)"},
		},
		TimeInRange: Table{
			{Name: "excellent", Min: f(70), Color: Green, Description: "Excellent glucose control"},
			{Name: "good", Min: f(50), Max: f(70), Color: LightGreen, Description: "Good glucose control"},
			{Name: "acceptable", Min: f(30), Max: f(50), Color: Yellow, Description: "Acceptable, room for improvement"},
			{Name: "poor", Max: f(30), Color: Red, Description: "Poor control, needs intervention"},
		},
		TimeBelowRange: Table{
			{Name: "safe", Max: f(4), Color: Green, Description: "Safe level of hypoglycemia"},
			{Name: "elevated", Min: f(4), Max: f(10), Color: Yellow, Description: "Elevated hypoglycemia risk"},
			{Name: "high", Min: f(10), Color: Red, Description: "High hypoglycemia risk"},
		},
		TimeAboveRange: Table{
			{Name: "safe", Max: f(25), Color: Green, Description: "Acceptable hyperglycemia time"},
			{Name: "elevated", Min: f(25), Max: f(50), Color: Yellow, Description: "Elevated hyperglycemia"},
			{Name: "high", Min: f(50), Color: Red, Description: "Excessive hyperglycemia"},
		},
	}
}

func f(v float64) *float64 {
	return &v
}
