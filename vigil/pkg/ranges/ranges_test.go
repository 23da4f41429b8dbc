package ranges

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RangesTestSuite struct {
	suite.Suite
}

func TestRangesTestSuite(t *testing.T) {
	suite.Run(t, new(RangesTestSuite))
}

func (suite *RangesTestSuite) TestFirstMatchWins() {
	table := Table{
		{Name: "low", Max: f(70), Color: Red, Description: "low"},
		{Name: "mid", Min: f(70), Max: f(180), Color: Green, Description: "mid"},
		{Name: "high", Min: f(180), Color: Red, Description: "high"},
	}

	st := Classify(75, table, false)
	assert.Equal(suite.T(), "mid", st.Description)
	assert.Equal(suite.T(), Green, st.Color)

	// 70 sits in both the first and second band; the first one wins.
	st = Classify(70, table, false)
	assert.Equal(suite.T(), "low", st.Description)
}

func (suite *RangesTestSuite) TestReverse() {
	table := Table{
		{Name: "safe", Max: f(4), Color: Green, Description: "safe"},
		{Name: "elevated", Min: f(4), Max: f(10), Color: Yellow, Description: "elevated"},
		{Name: "high", Min: f(10), Color: Red, Description: "high"},
	}

	assert.Equal(suite.T(), Red, Classify(2, table, true).Color, "green flips to red")
	assert.Equal(suite.T(), Yellow, Classify(7, table, true).Color, "yellow is unchanged")
	assert.Equal(suite.T(), Green, Classify(50, table, true).Color, "red flips to green")
}

func (suite *RangesTestSuite) TestNoMatch() {
	table := Table{
		{Name: "nonneg", Min: f(0), Max: f(100), Color: Green, Description: "ok"},
	}

	st := Classify(-5, table, false)
	assert.Equal(suite.T(), Gray, st.Color)
	assert.Equal(suite.T(), "Unknown status", st.Description)
}

func (suite *RangesTestSuite) TestUnboundedBands() {
	table := Table{
		{Name: "any", Color: Yellow, Description: "catch-all"},
	}
	assert.Equal(suite.T(), Yellow, Classify(-1e9, table, false).Color)
	assert.Equal(suite.T(), Yellow, Classify(1e9, table, false).Color)
}

func (suite *RangesTestSuite) TestDefaults() {
	t := Defaults()

	assert.Equal(suite.T(), Green, Classify(5.5, t.EA1c, false).Color)
	assert.Equal(suite.T(), Yellow, Classify(6.0, t.EA1c, false).Color)
	assert.Equal(suite.T(), Red, Classify(9.1, t.EA1c, false).Color)
	assert.Equal(suite.T(), Green, Classify(82, t.TimeInRange, false).Color)
	assert.Equal(suite.T(), Red, Classify(2, t.TimeBelowRange, true).Color)
}

func (suite *RangesTestSuite) TestLoadOverride() {
	path := filepath.Join(suite.T().TempDir(), "ranges.yaml")
	override := `
cv:
  - name: strict
    max: 30
    color: green
    description: Strict stability target
  - name: loose
    min: 30
    color: red
    description: Too variable
`
	assert.NoError(suite.T(), os.WriteFile(path, []byte(override), 0o644))

	t, err := Load(path)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), t.CV, 2, "cv table should be replaced")
	assert.Equal(suite.T(), "Strict stability target", Classify(25, t.CV, false).Description)
	assert.NotEmpty(suite.T(), t.EA1c, "untouched tables keep defaults")
}

func (suite *RangesTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "nope.yaml"))
	assert.Error(suite.T(), err)
}
