package serverutils

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradie-recovery-be/internal/pkg/authz"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeResolver struct {
	users map[string]*authz.Identity
}

func (f *fakeResolver) ResolveIdentity(_ context.Context, claims *Claims) (*authz.Identity, error) {
	if id, ok := f.users[claims.Subject]; ok {
		cp := *id
		return &cp, nil
	}
	return nil, errors.New("unknown subject")
}

type fakeSessions map[string]bool

func (f fakeSessions) AdminSessionActive(_ context.Context, sid string) (bool, error) {
	return f[sid], nil
}

func newTestApp(auth *Authenticator, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	chain := append([]fiber.Handler{auth.RequireAuth}, handlers...)
	chain = append(chain, func(ctx *fiber.Ctx) error {
		return ctx.JSON(SuccessResponse("ok", CurrentIdentity(ctx)))
	})
	app.Get("/protected", chain...)
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireAuthHMAC(t *testing.T) {
	user := &authz.Identity{ID: uuid.New(), Email: "a@b.au", Role: authz.RoleUser}
	resolver := &fakeResolver{users: map[string]*authz.Identity{user.ID.String(): user}}
	auth := NewAuthenticator(NewHMACVerifier(testSecret), resolver, nil)
	app := newTestApp(auth)

	token, _, err := NewTokenIssuer(testSecret, time.Hour).Issue(user.ID, user.Email, authz.RoleAdmin, "", 0)
	require.NoError(t, err)

	resp := doGet(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body BaseResponse[authz.Identity]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// role comes from the store, not the token claim
	assert.Equal(t, authz.RoleUser, body.Data.Role)
}

func TestRequireAuthRejects(t *testing.T) {
	auth := NewAuthenticator(NewHMACVerifier(testSecret), &fakeResolver{}, nil)
	app := newTestApp(auth)

	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, "garbage").StatusCode)

	claims := jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix()}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, expired).StatusCode)

	wrongKey, _, err := NewTokenIssuer("other", time.Hour).Issue(uuid.New(), "", authz.RoleUser, "", 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, wrongKey).StatusCode)
}

func TestRequireCapability(t *testing.T) {
	user := &authz.Identity{ID: uuid.New(), Role: authz.RoleUser}
	mod := &authz.Identity{ID: uuid.New(), Role: authz.RoleModerator}
	resolver := &fakeResolver{users: map[string]*authz.Identity{
		user.ID.String(): user,
		mod.ID.String():  mod,
	}}
	auth := NewAuthenticator(NewHMACVerifier(testSecret), resolver, nil)
	app := newTestApp(auth, RequireCapability(authz.ApplicationsReview))
	issuer := NewTokenIssuer(testSecret, time.Hour)

	userToken, _, _ := issuer.Issue(user.ID, "", user.Role, "", 0)
	modToken, _, _ := issuer.Issue(mod.ID, "", mod.Role, "", 0)

	assert.Equal(t, http.StatusForbidden, doGet(t, app, userToken).StatusCode)
	assert.Equal(t, http.StatusOK, doGet(t, app, modToken).StatusCode)
}

func TestRequireAdminSession(t *testing.T) {
	admin := &authz.Identity{ID: uuid.New(), Role: authz.RoleAdmin}
	resolver := &fakeResolver{users: map[string]*authz.Identity{admin.ID.String(): admin}}
	sessions := fakeSessions{"live": true}
	auth := NewAuthenticator(NewHMACVerifier(testSecret), resolver, sessions)
	app := newTestApp(auth, auth.RequireAdminSession)
	issuer := NewTokenIssuer(testSecret, time.Hour)

	noSession, _, _ := issuer.Issue(admin.ID, "", admin.Role, "", 0)
	revoked, _, _ := issuer.Issue(admin.ID, "", admin.Role, "gone", 0)
	live, _, _ := issuer.Issue(admin.ID, "", admin.Role, "live", 0)

	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, noSession).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, revoked).StatusCode)
	assert.Equal(t, http.StatusOK, doGet(t, app, live).StatusCode)
}

func TestJWKSVerifierInChain(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(newJWKS(key, "test-key"))
	}))
	t.Cleanup(server.Close)

	issuer, audience := "https://id.example/", "https://api.example"
	jwks, err := NewJWKSVerifier(server.URL, issuer, audience)
	require.NoError(t, err)

	external := &authz.Identity{ID: uuid.New(), Role: authz.RoleUser}
	resolver := &fakeResolver{users: map[string]*authz.Identity{"idp|42": external}}
	auth := NewAuthenticator(ChainVerifier{NewHMACVerifier(testSecret), jwks}, resolver, nil)
	app := newTestApp(auth)

	good := signRS256(t, key, "test-key", issuer, audience)
	assert.Equal(t, http.StatusOK, doGet(t, app, good).StatusCode)

	wrongAud := signRS256(t, key, "test-key", issuer, "https://other")
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, wrongAud).StatusCode)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged := signRS256(t, otherKey, "test-key", issuer, audience)
	assert.Equal(t, http.StatusUnauthorized, doGet(t, app, forged).StatusCode)
}

func TestExtractBearerToken(t *testing.T) {
	token, ok := ExtractBearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	for _, h := range []string{"", "Bearer", "Bearer  ", "Token abc"} {
		_, ok := ExtractBearerToken(h)
		assert.False(t, ok, h)
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid, issuer, audience string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   issuer,
		"aud":   audience,
		"sub":   "idp|42",
		"email": "ext@example.au",
		"exp":   now.Add(10 * time.Minute).Unix(),
		"iat":   now.Unix(),
	})
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newJWKS(key *rsa.PrivateKey, kid string) map[string][]jwk {
	return map[string][]jwk{"keys": {{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
	}}}
}
