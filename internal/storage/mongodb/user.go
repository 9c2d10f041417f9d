package mongodb

import (
	"context"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserManager struct {
	Collection *mongo.Collection
}

func NewUserManager(database *mongo.Database) UserManager {
	return UserManager{
		Collection: database.Collection("users"),
	}
}

func (m UserManager) Save(ctx context.Context, user *goidp.User) error {
	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: user.ID}}
	_, err := m.Collection.ReplaceOne(ctx, filter, user, &options.ReplaceOptions{Upsert: &shouldUpsert})
	return err
}

func (m UserManager) User(ctx context.Context, id string) (*goidp.User, error) {
	return m.getWithFilter(ctx, bson.D{{Key: "_id", Value: id}})
}

func (m UserManager) UserByUsername(ctx context.Context, username string) (*goidp.User, error) {
	return m.getWithFilter(ctx, bson.D{{Key: "username", Value: username}})
}

func (m UserManager) Delete(ctx context.Context, id string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := m.Collection.DeleteOne(ctx, filter)
	return err
}

func (m UserManager) getWithFilter(ctx context.Context, filter any) (*goidp.User, error) {
	result := m.Collection.FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user goidp.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

var _ goidp.UserManager = UserManager{}
