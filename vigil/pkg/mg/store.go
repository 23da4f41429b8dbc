package mg

import (
	"context"
	"fmt"
	"time"

	"nsight/vigil/defs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	GlucoseCollection      = "glucose"
	TreatmentsCollection   = "treatments"
	DeviceStatusCollection = "devicestatus"
	AlertsCollection       = "alerts"
)

type DocumentStore interface {
	DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error
	DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error
	InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
	Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error)
}

type ReadingStore interface {
	WriteReading(ctx context.Context, r *defs.Reading) (*mongo.UpdateResult, error)
	ReadReadings(ctx context.Context, start, end time.Time) ([]defs.Reading, error)
}

type TreatmentStore interface {
	WriteTreatment(ctx context.Context, t *defs.Treatment) (*mongo.UpdateResult, error)
	ReadTreatments(ctx context.Context, start, end time.Time) ([]defs.Treatment, error)
}

type AlertStore interface {
	WriteAlert(ctx context.Context, al *defs.Alert) (*mongo.UpdateResult, error)
	ReadAlerts(ctx context.Context, start, end time.Time) ([]defs.Alert, error)
}

type DeviceStatusStore interface {
	WriteDeviceSnapshot(ctx context.Context, ds *defs.DeviceSnapshot) (*mongo.UpdateResult, error)
	ReadDeviceSnapshots(ctx context.Context, start, end time.Time) ([]defs.DeviceSnapshot, error)
}

type MongoStore struct {
	Client *mongo.Client
	Logger *zap.Logger

	DBName string
}

func New(ctx context.Context, cfg defs.MongoConfig, dbName string, logger *zap.Logger) (*MongoStore, error) {
	opts := []*options.ClientOptions{options.Client().ApplyURI(cfg.URI)}
	if cfg.Username != "" {
		opts = append(opts, options.Client().SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		}))
	}

	mongoClient, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to mongo: %w", err)
	}

	return &MongoStore{
		Client: mongoClient,
		Logger: logger,
		DBName: dbName,
	}, nil
}

func (ms *MongoStore) DocByID(ctx context.Context, collection string, id *primitive.ObjectID, doc interface{}) error {
	sr := ms.Client.Database(ms.DBName).Collection(collection).FindOne(ctx, bson.M{"_id": id})
	return sr.Decode(doc)
}

func (ms *MongoStore) InsertIfNew(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"inserting document",
		zap.String("collection", collection),
		zap.Any("filter", filter),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$setOnInsert": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		return nil, fmt.Errorf("unable to insert if new: %w", err)
	}

	return res, err
}

func (ms *MongoStore) Upsert(ctx context.Context, collection string, filter bson.M, doc interface{}) (*mongo.UpdateResult, error) {
	ms.Logger.Debug(
		"upserting document",
		zap.String("collection", collection),
	)

	res, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		UpdateOne(ctx, filter,
			bson.M{"$set": doc},
			options.Update().SetUpsert(true),
		)
	if err != nil {
		ms.Logger.Debug(
			"unable to upsert document",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return nil, fmt.Errorf("unable to upsert document: %w", err)
	}

	return res, err
}

func (ms *MongoStore) DeleteByID(ctx context.Context, collection string, id *primitive.ObjectID) error {
	ms.Logger.Debug(
		"deleting document by id",
		zap.String("collection", collection),
		zap.String("id", id.Hex()),
	)
	_, err := ms.Client.Database(ms.DBName).Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (ms *MongoStore) getEventsBetween(ctx context.Context, collection string, start, end time.Time, slicePtr interface{}) error {
	ms.Logger.Debug(
		"reading events",
		zap.String("collection", collection),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	findOptions := options.Find()
	findOptions.SetSort(bson.D{primitive.E{Key: "time", Value: 1}})

	cur, err := ms.Client.
		Database(ms.DBName).
		Collection(collection).
		Find(ctx, bson.M{
			"time": bson.M{
				"$gte": primitive.NewDateTimeFromTime(start),
				"$lte": primitive.NewDateTimeFromTime(end),
			},
		}, findOptions)
	if err != nil {
		ms.Logger.Debug(
			"unable to read events",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return fmt.Errorf("unable to read events: %w", err)
	}

	return cur.All(ctx, slicePtr)
}

func (ms *MongoStore) WriteReading(ctx context.Context, r *defs.Reading) (*mongo.UpdateResult, error) {
	filter := bson.M{"time": r.Time}
	return ms.InsertIfNew(ctx, GlucoseCollection, filter, r)
}

func (ms *MongoStore) ReadReadings(ctx context.Context, start, end time.Time) ([]defs.Reading, error) {
	var rs []defs.Reading
	if err := ms.getEventsBetween(ctx, GlucoseCollection, start, end, &rs); err != nil {
		return nil, fmt.Errorf("unable to read glucose: %w", err)
	}
	return rs, nil
}

func (ms *MongoStore) WriteTreatment(ctx context.Context, t *defs.Treatment) (*mongo.UpdateResult, error) {
	filter := bson.M{}
	if t.ID != nil {
		filter["_id"] = t.ID
	} else {
		filter["time"] = t.Time
	}
	return ms.Upsert(ctx, TreatmentsCollection, filter, t)
}

func (ms *MongoStore) ReadTreatments(ctx context.Context, start, end time.Time) ([]defs.Treatment, error) {
	var ts []defs.Treatment
	if err := ms.getEventsBetween(ctx, TreatmentsCollection, start, end, &ts); err != nil {
		return nil, fmt.Errorf("unable to read treatments: %w", err)
	}
	return ts, nil
}

func (ms *MongoStore) WriteAlert(ctx context.Context, al *defs.Alert) (*mongo.UpdateResult, error) {
	filter := bson.M{}
	if al.ID != nil {
		filter["_id"] = al.ID
	} else {
		filter["time"] = al.Time
	}
	return ms.Upsert(ctx, AlertsCollection, filter, al)
}

func (ms *MongoStore) ReadAlerts(ctx context.Context, start, end time.Time) ([]defs.Alert, error) {
	var alerts []defs.Alert
	if err := ms.getEventsBetween(ctx, AlertsCollection, start, end, &alerts); err != nil {
		return nil, fmt.Errorf("unable to read alerts: %w", err)
	}
	return alerts, nil
}

func (ms *MongoStore) WriteDeviceSnapshot(ctx context.Context, ds *defs.DeviceSnapshot) (*mongo.UpdateResult, error) {
	filter := bson.M{"time": ds.Time}
	return ms.InsertIfNew(ctx, DeviceStatusCollection, filter, ds)
}

func (ms *MongoStore) ReadDeviceSnapshots(ctx context.Context, start, end time.Time) ([]defs.DeviceSnapshot, error) {
	var dss []defs.DeviceSnapshot
	if err := ms.getEventsBetween(ctx, DeviceStatusCollection, start, end, &dss); err != nil {
		return nil, fmt.Errorf("unable to read device snapshots: %w", err)
	}
	return dss, nil
}
