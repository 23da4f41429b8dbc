package mg

import (
	"context"
	"testing"
	"time"

	"nsight/vigil/defs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	mongoURI = "mongodb://localhost:27017"
	testDB   = "test"
)

type MongoTestSuite struct {
	suite.Suite
	ms *MongoStore
}

func TestMongoTestSuiteIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	suite.Run(t, new(MongoTestSuite))
}

func (suite *MongoTestSuite) SetupSuite() {
	ms, err := New(context.Background(), defs.MongoConfig{URI: mongoURI}, testDB, zap.NewExample())
	if err != nil {
		panic(err)
	}
	suite.ms = ms
}

func (suite *MongoTestSuite) AfterTest(_, _ string) {
	suite.T().Log("teardown test db")
	assert.NoError(suite.T(), suite.ms.Client.Database(testDB).Drop(context.Background()), "unable to drop test db")
}

func (suite *MongoTestSuite) TestDocByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.Treatment{ID: &id, EventType: "Correction Bolus"}

	var fetchedDoc defs.Treatment
	_, err := suite.ms.WriteTreatment(ctx, &doc)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.ms.DocByID(ctx, TreatmentsCollection, &id, &fetchedDoc), "unable to fetch document by id")
	assert.EqualValues(suite.T(), doc, fetchedDoc, "not same document")
}

func (suite *MongoTestSuite) TestDeleteByIDIntegration() {
	ctx := context.Background()
	id := primitive.NewObjectID()
	doc := defs.Treatment{ID: &id}

	var fetchedDoc defs.Treatment
	_, err := suite.ms.WriteTreatment(ctx, &doc)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.ms.DeleteByID(ctx, TreatmentsCollection, &id))
	assert.Error(suite.T(),
		suite.ms.DocByID(ctx, TreatmentsCollection, &id, &fetchedDoc),
		"found document by id, delete not successful",
	)
}

func (suite *MongoTestSuite) TestReadWriteReadingsIntegration() {
	ctx := context.Background()
	times := []time.Time{
		time.Date(2022, time.May, 12, 1, 30, 0, 0, time.UTC),
		time.Date(2022, time.May, 15, 1, 30, 0, 0, time.UTC),
		time.Date(2022, time.May, 10, 0, 0, 0, 0, time.UTC), // Start.
		time.Date(2022, time.May, 20, 0, 0, 0, 0, time.UTC), // End.
	}

	rsInsert := []defs.Reading{
		{Time: times[1], Mgdl: 130, Direction: "Flat"},
		{Time: times[0], Mgdl: 117, Direction: "Flat"},
	}
	for i := range rsInsert {
		_, err := suite.ms.WriteReading(ctx, &rsInsert[i])
		assert.NoError(suite.T(), err)
	}

	// Writing the same timestamp twice must not duplicate.
	_, err := suite.ms.WriteReading(ctx, &defs.Reading{Time: times[0], Mgdl: 117})
	assert.NoError(suite.T(), err)

	rs, err := suite.ms.ReadReadings(ctx, times[2], times[3])
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rs, 2)
	assert.Equal(suite.T(), 117.0, rs[0].Mgdl, "results should be sorted ascending by time")
	assert.Equal(suite.T(), 130.0, rs[1].Mgdl)
}

func (suite *MongoTestSuite) TestReadWriteDeviceSnapshotsIntegration() {
	ctx := context.Background()
	now := time.Date(2022, time.May, 12, 1, 30, 0, 0, time.UTC)
	iob := 1.4

	_, err := suite.ms.WriteDeviceSnapshot(ctx, &defs.DeviceSnapshot{
		Time:   now,
		Device: "openaps://rpi",
		IOB:    &iob,
	})
	assert.NoError(suite.T(), err)

	dss, err := suite.ms.ReadDeviceSnapshots(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), dss, 1)
	assert.Equal(suite.T(), 1.4, *dss[0].IOB)
}
