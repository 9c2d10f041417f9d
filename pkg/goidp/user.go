package goidp

import "context"

// UserManager abstracts the user store the server authenticates against.
// Lookups are idempotent reads; Delete is a mutating call and is never
// silently retried.
type UserManager interface {
	Save(ctx context.Context, user *User) error
	User(ctx context.Context, id string) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, id string) error
}

type User struct {
	// ID is the subject identifier issued in tokens.
	ID             string `json:"sub" bson:"_id"`
	Username       string `json:"username" bson:"username"`
	HashedPassword string `json:"hashed_password,omitempty" bson:"hashed_password,omitempty"`
	// Claims are the profile claims returned by the userinfo endpoint,
	// filtered by the granted scopes.
	Claims map[string]any `json:"claims,omitempty" bson:"claims,omitempty"`
}
