package mongodb

import (
	"context"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeviceSessionManager struct {
	Collection *mongo.Collection
}

func NewDeviceSessionManager(database *mongo.Database) DeviceSessionManager {
	return DeviceSessionManager{
		Collection: database.Collection("device_sessions"),
	}
}

func (m DeviceSessionManager) Save(ctx context.Context, session *goidp.DeviceSession) error {
	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: session.ID}}
	_, err := m.Collection.ReplaceOne(ctx, filter, session, &options.ReplaceOptions{Upsert: &shouldUpsert})
	return err
}

func (m DeviceSessionManager) SessionByID(ctx context.Context, id string) (*goidp.DeviceSession, error) {
	return m.getWithFilter(ctx, bson.D{{Key: "_id", Value: id}}, nil)
}

func (m DeviceSessionManager) LatestByDeviceID(ctx context.Context, deviceID string) (*goidp.DeviceSession, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.getWithFilter(ctx, bson.D{{Key: "device_id", Value: deviceID}}, opts)
}

func (m DeviceSessionManager) Delete(ctx context.Context, id string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := m.Collection.DeleteOne(ctx, filter)
	return err
}

func (m DeviceSessionManager) getWithFilter(
	ctx context.Context,
	filter any,
	opts *options.FindOneOptions,
) (*goidp.DeviceSession, error) {
	var result *mongo.SingleResult
	if opts != nil {
		result = m.Collection.FindOne(ctx, filter, opts)
	} else {
		result = m.Collection.FindOne(ctx, filter)
	}
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session goidp.DeviceSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

var _ goidp.DeviceSessionManager = DeviceSessionManager{}
