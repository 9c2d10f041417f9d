package goidp

import (
	"context"
	"slices"
)

// ClientManager contains all the logic needed to manage clients.
type ClientManager interface {
	Save(ctx context.Context, client *Client) error
	Client(ctx context.Context, id string) (*Client, error)
	Delete(ctx context.Context, id string) error
}

type Client struct {
	ID string `json:"client_id" bson:"_id"`
	// HashedSecret is the bcrypt hash of the client secret. The plain secret
	// is never stored.
	HashedSecret string `json:"hashed_secret,omitempty" bson:"hashed_secret,omitempty"`
	ClientMetaInfo
}

type ClientMetaInfo struct {
	Name string `json:"client_name,omitempty" bson:"client_name,omitempty"`
	// RedirectURIs is the set of URIs the client may be redirected to.
	// Requests are matched against it with exact string comparison.
	RedirectURIs           []string       `json:"redirect_uris" bson:"redirect_uris"`
	PostLogoutRedirectURIs []string        `json:"post_logout_redirect_uris,omitempty" bson:"post_logout_redirect_uris,omitempty"`
	GrantTypes             []GrantType     `json:"grant_types" bson:"grant_types"`
	ResponseTypes          []ResponseType  `json:"response_types" bson:"response_types"`
	Scopes                 string          `json:"scope" bson:"scope"`
	AuthnMethod            ClientAuthnType `json:"token_endpoint_auth_method" bson:"token_endpoint_auth_method"`
}

// IsRedirectURIAllowed reports whether the URI exactly matches one of the
// registered redirect URIs. Prefix or pattern matches never succeed.
func (c *Client) IsRedirectURIAllowed(redirectURI string) bool {
	return redirectURI != "" && slices.Contains(c.RedirectURIs, redirectURI)
}

func (c *Client) IsPostLogoutRedirectURIAllowed(redirectURI string) bool {
	return slices.Contains(c.PostLogoutRedirectURIs, redirectURI)
}

func (c *Client) IsGrantTypeAllowed(grantType GrantType) bool {
	return slices.Contains(c.GrantTypes, grantType)
}

func (c *Client) IsResponseTypeAllowed(responseType ResponseType) bool {
	return slices.Contains(c.ResponseTypes, responseType)
}
