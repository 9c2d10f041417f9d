// Package joseutil wraps the JOSE operations shared by the token and
// discovery packages.
package joseutil

import (
	"regexp"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var jwsRegex = regexp.MustCompile(`^[\w-]+\.[\w-]+\.[\w-]*$`)

// IsJWS reports whether the token looks like a compact serialized JWS.
func IsJWS(token string) bool {
	return jwsRegex.MatchString(token)
}

// Sign serializes claims as a signed JWT using the informed key.
func Sign(claims any, signer jose.SigningKey, opts *jose.SignerOptions) (string, error) {
	if opts == nil {
		opts = &jose.SignerOptions{}
	}
	if _, ok := opts.ExtraHeaders[jose.HeaderType]; !ok {
		opts = opts.WithType("JWT")
	}

	joseSigner, err := jose.NewSigner(signer, opts)
	if err != nil {
		return "", err
	}

	jws, err := jwt.Signed(joseSigner).Claims(claims).Serialize()
	if err != nil {
		return "", err
	}

	return jws, nil
}
