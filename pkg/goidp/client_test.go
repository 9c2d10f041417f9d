package goidp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRedirectURIAllowed(t *testing.T) {
	// Given.
	client := &Client{
		ClientMetaInfo: ClientMetaInfo{
			RedirectURIs: []string{"https://client.example.com/callback"},
		},
	}

	testCases := []struct {
		redirectURI string
		isAllowed   bool
	}{
		{"https://client.example.com/callback", true},
		// Matching is exact, a registered URI does not authorize its
		// sub paths or query variants.
		{"https://client.example.com/callback/extra", false},
		{"https://client.example.com/callback?param=value", false},
		{"https://client.example.com/", false},
		{"https://attacker.example.com/callback", false},
		{"", false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.redirectURI, func(t *testing.T) {
			// When.
			isAllowed := client.IsRedirectURIAllowed(testCase.redirectURI)

			// Then.
			assert.Equal(t, testCase.isAllowed, isAllowed)
		})
	}
}

func TestIsPostLogoutRedirectURIAllowed(t *testing.T) {
	// Given.
	client := &Client{
		ClientMetaInfo: ClientMetaInfo{
			PostLogoutRedirectURIs: []string{"https://client.example.com/logged-out"},
		},
	}

	// Then.
	assert.True(t, client.IsPostLogoutRedirectURIAllowed("https://client.example.com/logged-out"))
	assert.False(t, client.IsPostLogoutRedirectURIAllowed("https://client.example.com/logged-out/extra"))
	assert.False(t, client.IsPostLogoutRedirectURIAllowed(""))
}

func TestIsGrantTypeAllowed(t *testing.T) {
	// Given.
	client := &Client{
		ClientMetaInfo: ClientMetaInfo{
			GrantTypes: []GrantType{GrantAuthorizationCode},
		},
	}

	// Then.
	assert.True(t, client.IsGrantTypeAllowed(GrantAuthorizationCode))
	assert.False(t, client.IsGrantTypeAllowed(GrantRefreshToken))
}
