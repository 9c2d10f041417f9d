package mongodb

import (
	"context"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ClientManager struct {
	Collection *mongo.Collection
}

func NewClientManager(database *mongo.Database) ClientManager {
	return ClientManager{
		Collection: database.Collection("clients"),
	}
}

func (m ClientManager) Save(ctx context.Context, client *goidp.Client) error {
	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: client.ID}}
	_, err := m.Collection.ReplaceOne(ctx, filter, client, &options.ReplaceOptions{Upsert: &shouldUpsert})
	return err
}

func (m ClientManager) Client(ctx context.Context, id string) (*goidp.Client, error) {
	result := m.Collection.FindOne(ctx, bson.D{{Key: "_id", Value: id}})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var client goidp.Client
	if err := result.Decode(&client); err != nil {
		return nil, err
	}

	return &client, nil
}

func (m ClientManager) Delete(ctx context.Context, id string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := m.Collection.DeleteOne(ctx, filter)
	return err
}

var _ goidp.ClientManager = ClientManager{}
