// Command idp runs a multi-tenant identity provider with a demo client and
// user per tenant. Sessions are kept in memory unless MONGODB_URI is set.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/idpsrv/go-idp/internal/hashutil"
	"github.com/idpsrv/go-idp/internal/storage/mongodb"
	"github.com/idpsrv/go-idp/pkg/goidp"
	"github.com/idpsrv/go-idp/pkg/provider"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	host := envOrDefault("IDP_HOST", "http://localhost:8080")
	address := envOrDefault("IDP_ADDRESS", ":8080")

	var tenants []provider.Provider
	for _, tenantID := range []string{"tenant1", "tenant2"} {
		tenant, err := newTenant(tenantID, host, logger)
		if err != nil {
			log.Fatal(err)
		}
		tenants = append(tenants, tenant)
	}

	tenantSet, err := provider.NewTenantSet(tenants...)
	if err != nil {
		log.Fatal(err)
	}

	for _, tenant := range tenants {
		logger.Info("tenant registered", slog.String("issuer", tenant.Issuer()))
	}

	server := &http.Server{
		Addr:              address,
		Handler:           tenantSet.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func envOrDefault(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return defaultValue
}

func newTenant(tenantID, host string, logger *slog.Logger) (provider.Provider, error) {
	opts := []provider.ProviderOption{
		provider.WithLogger(logger),
		provider.WithStaticClient(demoClient()),
	}

	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		storageOpts, err := mongoStorageOptions(mongoURI, tenantID)
		if err != nil {
			return provider.Provider{}, err
		}
		opts = append(opts, storageOpts...)
	}

	tenant, err := provider.New(tenantID, host, privateJWKS(tenantID), opts...)
	if err != nil {
		return provider.Provider{}, err
	}

	if err := tenant.SaveUser(context.Background(), demoUser()); err != nil {
		return provider.Provider{}, err
	}

	return tenant, nil
}

func mongoStorageOptions(uri, tenantID string) ([]provider.ProviderOption, error) {
	conn, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	database := conn.Database("idp_" + tenantID)
	return []provider.ProviderOption{
		provider.WithClientStorage(mongodb.NewClientManager(database)),
		provider.WithAuthnSessionStorage(mongodb.NewAuthnSessionManager(database)),
		provider.WithDeviceSessionStorage(mongodb.NewDeviceSessionManager(database)),
		provider.WithGrantSessionStorage(mongodb.NewGrantSessionManager(database)),
		provider.WithUserStorage(mongodb.NewUserManager(database)),
	}, nil
}

func demoClient() *goidp.Client {
	return &goidp.Client{
		ID:           "demo_client",
		HashedSecret: hashutil.BCryptHash("demo_secret"),
		ClientMetaInfo: goidp.ClientMetaInfo{
			Name:                   "Demo Client",
			AuthnMethod:            goidp.ClientAuthnSecretBasic,
			RedirectURIs:           []string{"http://localhost:3000/callback"},
			PostLogoutRedirectURIs: []string{"http://localhost:3000/logged-out"},
			Scopes:                 "openid profile email offline_access",
			GrantTypes: []goidp.GrantType{
				goidp.GrantAuthorizationCode,
				goidp.GrantRefreshToken,
			},
			ResponseTypes: []goidp.ResponseType{goidp.ResponseTypeCode},
		},
	}
}

func demoUser() *goidp.User {
	return &goidp.User{
		ID:             "demo_user",
		Username:       "demo",
		HashedPassword: hashutil.BCryptHash("demo_password"),
		Claims: map[string]any{
			"name":           "Demo User",
			"email":          "demo@example.com",
			"email_verified": true,
		},
	}
}

func privateJWKS(tenantID string) jose.JSONWebKeySet {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatal(err)
	}

	return jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{{
			Key:       privateKey,
			KeyID:     tenantID + "_rs256_key",
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}},
	}
}
