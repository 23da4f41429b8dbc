package vigil

import (
	"testing"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/ranges"
	"nsight/vigil/pkg/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type StatsUpdaterTestSuite struct {
	suite.Suite
	updater *StatsUpdater
	source  *fakeSource
}

func TestStatsUpdaterTestSuite(t *testing.T) {
	suite.Run(t, new(StatsUpdaterTestSuite))
}

func (suite *StatsUpdaterTestSuite) SetupTest() {
	suite.source = &fakeSource{}
	suite.updater = &StatsUpdater{
		Builder: &report.Builder{
			Source:  suite.source,
			Tables:  ranges.Defaults(),
			Glucose: defs.GlucoseConfig{Unit: defs.UnitMgdl, TargetMin: 70, TargetMax: 180},
			Logger:  zap.New(nil),
		},
		Logger: zap.New(nil),
	}
}

func (suite *StatsUpdaterTestSuite) TestUpdateAll() {
	suite.source.entries = []defs.Entry{{SGV: 100}, {SGV: 140}}

	_, ok := suite.updater.Report("daily")
	assert.False(suite.T(), ok, "no report before the first update")

	assert.NoError(suite.T(), suite.updater.UpdateAll())

	for _, p := range report.Periods {
		r, ok := suite.updater.Report(p.Name)
		assert.True(suite.T(), ok, p.Name)
		assert.Equal(suite.T(), 2, r.Samples)
		assert.Equal(suite.T(), 120.0, *r.Metrics["mean_bg"].Value)
	}

	_, ok = suite.updater.Report("hourly")
	assert.False(suite.T(), ok)
}
