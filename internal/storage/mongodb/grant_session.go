package mongodb

import (
	"context"
	"errors"

	"github.com/idpsrv/go-idp/pkg/goidp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GrantSessionManager struct {
	Collection *mongo.Collection
}

func NewGrantSessionManager(database *mongo.Database) GrantSessionManager {
	return GrantSessionManager{
		Collection: database.Collection("grant_sessions"),
	}
}

func (m GrantSessionManager) Save(ctx context.Context, session *goidp.GrantSession) error {
	shouldUpsert := true
	filter := bson.D{{Key: "_id", Value: session.ID}}
	_, err := m.Collection.ReplaceOne(ctx, filter, session, &options.ReplaceOptions{Upsert: &shouldUpsert})
	return err
}

func (m GrantSessionManager) SessionByTokenID(ctx context.Context, tokenID string) (*goidp.GrantSession, error) {
	return m.getWithFilter(ctx, bson.D{{Key: "token_id", Value: tokenID}})
}

func (m GrantSessionManager) SessionByRefreshToken(ctx context.Context, refreshToken string) (*goidp.GrantSession, error) {
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "refresh_token", Value: refreshToken}},
		bson.D{{Key: "rotated_refresh_tokens", Value: refreshToken}},
	}}}
	return m.getWithFilter(ctx, filter)
}

// RotateRefreshToken filters on the current token value, so only one of two
// concurrent rotations with the same token can match the document.
func (m GrantSessionManager) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "refresh_token", Value: oldToken},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "refresh_token", Value: newToken}}},
		{Key: "$push", Value: bson.D{{Key: "rotated_refresh_tokens", Value: oldToken}}},
	}

	result, err := m.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return errors.New("refresh token already rotated")
	}

	return nil
}

func (m GrantSessionManager) Delete(ctx context.Context, id string) error {
	filter := bson.D{{Key: "_id", Value: id}}
	_, err := m.Collection.DeleteOne(ctx, filter)
	return err
}

func (m GrantSessionManager) DeleteByAuthCode(ctx context.Context, code string) error {
	filter := bson.D{{Key: "auth_code", Value: code}}
	_, err := m.Collection.DeleteMany(ctx, filter)
	return err
}

func (m GrantSessionManager) DeleteBySubjectAndClient(ctx context.Context, subject, clientID string) error {
	filter := bson.D{
		{Key: "sub", Value: subject},
		{Key: "client_id", Value: clientID},
	}
	_, err := m.Collection.DeleteMany(ctx, filter)
	return err
}

func (m GrantSessionManager) DeleteBySubject(ctx context.Context, subject string) error {
	filter := bson.D{{Key: "sub", Value: subject}}
	_, err := m.Collection.DeleteMany(ctx, filter)
	return err
}

func (m GrantSessionManager) getWithFilter(ctx context.Context, filter any) (*goidp.GrantSession, error) {
	result := m.Collection.FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var session goidp.GrantSession
	if err := result.Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

var _ goidp.GrantSessionManager = GrantSessionManager{}
