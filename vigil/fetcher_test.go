package vigil

import (
	"context"
	"testing"
	"time"

	"nsight/vigil/defs"
	"nsight/vigil/pkg/nightscout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeSource struct {
	entries    []defs.Entry
	treatments []nightscout.Treatment
	statuses   []nightscout.DeviceStatus
}

func (f *fakeSource) Entries(_ context.Context, _ int) ([]defs.Entry, error) {
	return f.entries, nil
}

func (f *fakeSource) EntriesSince(_ context.Context, _ time.Time, _ int) ([]defs.Entry, error) {
	return f.entries, nil
}

func (f *fakeSource) Treatments(_ context.Context, _ int) ([]nightscout.Treatment, error) {
	return f.treatments, nil
}

func (f *fakeSource) DeviceStatus(_ context.Context, _ int) ([]nightscout.DeviceStatus, error) {
	return f.statuses, nil
}

// fakeStore records writes and reports existing reading timestamps as
// matches, the way the mongo InsertIfNew path does.
type fakeStore struct {
	known     map[int64]bool
	readings  []defs.Reading
	treats    []defs.Treatment
	snapshots []defs.DeviceSnapshot
	alerts    []defs.Alert
}

func (f *fakeStore) WriteReading(_ context.Context, r *defs.Reading) (*mongo.UpdateResult, error) {
	if f.known[r.Time.Unix()] {
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}
	f.readings = append(f.readings, *r)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakeStore) ReadReadings(_ context.Context, _, _ time.Time) ([]defs.Reading, error) {
	return f.readings, nil
}

func (f *fakeStore) WriteTreatment(_ context.Context, t *defs.Treatment) (*mongo.UpdateResult, error) {
	f.treats = append(f.treats, *t)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakeStore) ReadTreatments(_ context.Context, _, _ time.Time) ([]defs.Treatment, error) {
	return f.treats, nil
}

func (f *fakeStore) WriteDeviceSnapshot(_ context.Context, ds *defs.DeviceSnapshot) (*mongo.UpdateResult, error) {
	f.snapshots = append(f.snapshots, *ds)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

func (f *fakeStore) ReadDeviceSnapshots(_ context.Context, _, _ time.Time) ([]defs.DeviceSnapshot, error) {
	return f.snapshots, nil
}

type FetcherTestSuite struct {
	suite.Suite
	source *fakeSource
	store  *fakeStore
}

func TestFetcherTestSuite(t *testing.T) {
	suite.Run(t, new(FetcherTestSuite))
}

func (suite *FetcherTestSuite) SetupTest() {
	suite.source = &fakeSource{}
	suite.store = &fakeStore{known: make(map[int64]bool)}
}

func (suite *FetcherTestSuite) fetcher() *Fetcher {
	return &Fetcher{Source: suite.source, Store: suite.store, Logger: zap.New(nil)}
}

func (suite *FetcherTestSuite) TestFetchAndLoad() {
	now := time.Now().Truncate(time.Second)
	suite.source.entries = []defs.Entry{
		{SGV: 130, Date: now.UnixMilli(), Direction: "Flat", Device: "xDrip"},
		{SGV: 0, Date: now.Add(-5 * time.Minute).UnixMilli()}, // Calibration, no value.
		{SGV: 124, Date: now.Add(-10 * time.Minute).UnixMilli(), Direction: "FortyFiveUp"},
	}
	suite.source.treatments = []nightscout.Treatment{
		{EventType: "Correction Bolus", Insulin: 2, Date: now.UnixMilli()},
	}
	iob := 1.1
	suite.source.statuses = []nightscout.DeviceStatus{{
		Device:    "openaps://rpi",
		CreatedAt: now.UTC().Format(time.RFC3339),
		OpenAPS:   &nightscout.OpenAPS{Suggested: &nightscout.Determination{IOB: &iob}},
	}}

	assert.NoError(suite.T(), suite.fetcher().FetchAndLoad())

	assert.Len(suite.T(), suite.store.readings, 2, "entry without sgv should be skipped")
	assert.Equal(suite.T(), 130.0, suite.store.readings[0].Mgdl)

	assert.Len(suite.T(), suite.store.treats, 1)
	assert.Equal(suite.T(), "Correction Bolus", suite.store.treats[0].EventType)

	assert.Len(suite.T(), suite.store.snapshots, 1)
	assert.Equal(suite.T(), 1.1, *suite.store.snapshots[0].IOB)
	assert.Equal(suite.T(), "OpenAPS", suite.store.snapshots[0].LoopType)
}

func (suite *FetcherTestSuite) TestFetchStopsAtKnownReading() {
	now := time.Now().Truncate(time.Second)
	suite.source.entries = []defs.Entry{
		{SGV: 130, Date: now.UnixMilli()},
		{SGV: 124, Date: now.Add(-5 * time.Minute).UnixMilli()},
		{SGV: 119, Date: now.Add(-10 * time.Minute).UnixMilli()},
	}
	suite.store.known[now.Add(-5*time.Minute).Unix()] = true

	assert.NoError(suite.T(), suite.fetcher().FetchAndLoad())
	assert.Len(suite.T(), suite.store.readings, 1, "walk should stop at the first known entry")
}

func (suite *FetcherTestSuite) TestFetchAndLoadEmpty() {
	assert.NoError(suite.T(), suite.fetcher().FetchAndLoad())
	assert.Empty(suite.T(), suite.store.readings)
	assert.Empty(suite.T(), suite.store.snapshots)
}
