package goidp

type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

type ResponseType string

const (
	ResponseTypeCode    ResponseType = "code"
	ResponseTypeIDToken ResponseType = "id_token"
)

type ClientAuthnType string

const (
	ClientAuthnNone        ClientAuthnType = "none"
	ClientAuthnSecretBasic ClientAuthnType = "client_secret_basic"
	ClientAuthnSecretPost  ClientAuthnType = "client_secret_post"
)

type TokenFormat string

const (
	TokenFormatJWT    TokenFormat = "jwt"
	TokenFormatOpaque TokenFormat = "opaque"
)

// TokenTypeBearer is the only token type issued by the server.
const TokenTypeBearer = "Bearer"

type TokenTypeHint string

const (
	TokenHintAccess  TokenTypeHint = "access_token"
	TokenHintRefresh TokenTypeHint = "refresh_token"
)

const (
	ClaimIssuer          = "iss"
	ClaimSubject         = "sub"
	ClaimAudience        = "aud"
	ClaimClientID        = "client_id"
	ClaimScope           = "scope"
	ClaimIssuedAt        = "iat"
	ClaimExpiry          = "exp"
	ClaimTokenID         = "jti"
	ClaimNonce           = "nonce"
	ClaimAccessTokenHash = "at_hash"
)

const (
	ScopeOpenID        = "openid"
	ScopeProfile       = "profile"
	ScopeEmail         = "email"
	ScopeOfflineAccess = "offline_access"
)
