package serverutils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradie-recovery-be/internal/pkg/authz"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	identityKey   = "identity"
	defaultLeeway = 30 * time.Second
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the provider-neutral view of a verified bearer token.
type Claims struct {
	Subject   string
	Email     string
	SessionID string
	// External is set for tokens minted by the configured identity provider.
	External bool
}

type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// IdentityResolver maps verified claims to a stored user. The role always
// comes from the store, never from the token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *Claims) (*authz.Identity, error)
}

// SessionChecker backs the admin session requirement.
type SessionChecker interface {
	AdminSessionActive(ctx context.Context, sessionID string) (bool, error)
}

// HMACVerifier checks tokens issued by this service.
type HMACVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithLeeway(defaultLeeway),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		),
	}
}

func (v *HMACVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject:   readString(mapClaims, "sub"),
		Email:     readString(mapClaims, "email"),
		SessionID: readString(mapClaims, "sid"),
	}
	if claims.Subject == "" {
		claims.Subject = readString(mapClaims, "user_id")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

// JWKSVerifier checks RS-signed tokens from an external identity provider.
type JWKSVerifier struct {
	keyfunc keyfunc.Keyfunc
	parser  *jwt.Parser
}

func NewJWKSVerifier(jwksURL, issuer, audience string) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url must be set")
	}
	keyProvider, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(defaultLeeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWKSVerifier{keyfunc: keyProvider, parser: jwt.NewParser(opts...)}, nil
}

func (v *JWKSVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims := &Claims{
		Subject:  readString(mapClaims, "sub"),
		Email:    readString(mapClaims, "email"),
		External: true,
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

// ChainVerifier returns the first successful verification.
type ChainVerifier []TokenVerifier

func (c ChainVerifier) Verify(tokenString string) (*Claims, error) {
	lastErr := ErrInvalidToken
	for _, v := range c {
		if v == nil {
			continue
		}
		claims, err := v.Verify(tokenString)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// TokenIssuer signs HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (i *TokenIssuer) Issue(userID uuid.UUID, email string, role authz.Role, sessionID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = i.ttl
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":     userID.String(),
		"user_id": userID.String(),
		"email":   email,
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}
	if sessionID != "" {
		claims["sid"] = sessionID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Authenticator holds what the auth middlewares need.
type Authenticator struct {
	verifier TokenVerifier
	resolver IdentityResolver
	sessions SessionChecker
}

func NewAuthenticator(verifier TokenVerifier, resolver IdentityResolver, sessions SessionChecker) *Authenticator {
	return &Authenticator{verifier: verifier, resolver: resolver, sessions: sessions}
}

// Authenticate verifies a raw token and resolves the caller.
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*authz.Identity, error) {
	claims, err := a.verifier.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	identity, err := a.resolver.ResolveIdentity(ctx, claims)
	if err != nil {
		return nil, err
	}
	identity.SessionID = claims.SessionID
	return identity, nil
}

func (a *Authenticator) RequireAuth(ctx *fiber.Ctx) error {
	tokenStr, ok := ExtractBearerToken(ctx.Get(fiber.HeaderAuthorization))
	if !ok {
		return NewUnauthorized("missing token")
	}
	identity, err := a.Authenticate(ctx.UserContext(), tokenStr)
	if err != nil {
		return NewUnauthorized("invalid token")
	}
	setIdentity(ctx, identity)
	return ctx.Next()
}

// OptionalAuth attaches an identity when a valid token is present and
// otherwise lets the request through anonymously.
func (a *Authenticator) OptionalAuth(ctx *fiber.Ctx) error {
	if tokenStr, ok := ExtractBearerToken(ctx.Get(fiber.HeaderAuthorization)); ok {
		if identity, err := a.Authenticate(ctx.UserContext(), tokenStr); err == nil {
			setIdentity(ctx, identity)
		}
	}
	return ctx.Next()
}

// RequireAdminSession must run after RequireAuth.
func (a *Authenticator) RequireAdminSession(ctx *fiber.Ctx) error {
	identity := CurrentIdentity(ctx)
	if identity == nil {
		return NewUnauthorized("missing token")
	}
	if identity.SessionID == "" {
		return NewUnauthorized("admin session required")
	}
	// an unreachable store fails closed
	if a.sessions == nil {
		return NewUnauthorized("admin session unavailable")
	}
	active, err := a.sessions.AdminSessionActive(ctx.UserContext(), identity.SessionID)
	if err != nil {
		return NewUnauthorized("admin session unavailable")
	}
	if !active {
		return NewUnauthorized("admin session expired")
	}
	return ctx.Next()
}

// RequireCapability passes when the caller holds any of perms.
func RequireCapability(perms ...authz.Permission) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity := CurrentIdentity(ctx)
		if identity == nil {
			return NewUnauthorized("missing token")
		}
		for _, p := range perms {
			if identity.Can(p) {
				return ctx.Next()
			}
		}
		return NewForbidden("insufficient role")
	}
}

func CurrentIdentity(ctx *fiber.Ctx) *authz.Identity {
	identity, _ := ctx.Locals(identityKey).(*authz.Identity)
	return identity
}

func setIdentity(ctx *fiber.Ctx, identity *authz.Identity) {
	ctx.Locals(identityKey, identity)
	ctx.Locals("user_id", identity.ID.String())
}

func ExtractBearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func readString(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}
