package mongodb

import (
	"context"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuthnSessionManager struct {
	Collection *mongo.Collection
}

func NewAuthnSessionManager(database *mongo.Database) AuthnSessionManager {
	return AuthnSessionManager{
		Collection: database.Collection("authn_sessions"),
	}
}

func (m AuthnSessionManager) Save(ctx context.Context, session *goidp.AuthnSession) error {
	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: session.ID}}
	_, err := m.Collection.ReplaceOne(ctx, filter, session, &options.ReplaceOptions{Upsert: &shouldUpsert})
	return err
}

func (m AuthnSessionManager) SessionByID(ctx context.Context, id string) (*goidp.AuthnSession, error) {
	return m.getWithFilter(ctx, bson.D{{Key: "_id", Value: id}})
}

// ConsumeByAuthCode relies on findOneAndDelete being atomic at the document
// level, so a replayed code is consumed at most once.
func (m AuthnSessionManager) ConsumeByAuthCode(ctx context.Context, code string) (*goidp.AuthnSession, error) {
	result := m.Collection.FindOneAndDelete(ctx, bson.D{{Key: "auth_code", Value: code}})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session goidp.AuthnSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (m AuthnSessionManager) Delete(ctx context.Context, id string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := m.Collection.DeleteOne(ctx, filter)
	return err
}

func (m AuthnSessionManager) getWithFilter(ctx context.Context, filter any) (*goidp.AuthnSession, error) {
	result := m.Collection.FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session goidp.AuthnSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

var _ goidp.AuthnSessionManager = AuthnSessionManager{}
