package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"vantage/internal/domain"
	"vantage/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Only asymmetric algorithms; an HS256 token signed with a leaked anon key
// must never verify
var allowedAlgorithms = []string{"RS256", "ES256"}

// SupabaseJWTVerifier implements JWTVerifier using JWKS from Supabase.
type SupabaseJWTVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier backed by Supabase's JWKS endpoint.
// Keys are cached and refreshed by keyfunc based on HTTP cache headers.
// issuer is checked against the iss claim when non-empty.
func NewJWTVerifier(ctx context.Context, jwksURL, issuer string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL, "issuer", issuer)
	return newVerifier(jwks.Keyfunc, issuer, logger), nil
}

func newVerifier(kf jwt.Keyfunc, issuer string, logger *slog.Logger) *SupabaseJWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &SupabaseJWTVerifier{
		keyfunc: kf,
		parser:  jwt.NewParser(opts...),
		logger:  logger,
	}
}

// VerifyToken validates a JWT token and extracts Supabase claims.
// Every failure maps to domain.ErrUnauthorized.
func (v *SupabaseJWTVerifier) VerifyToken(tokenString string) (*models.SupabaseClaims, error) {
	claims := &models.SupabaseClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyfunc)
	if err != nil {
		v.logger.Debug("token rejected", "error", err.Error())
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Anonymous sign-ins carry role "anon"; they have no memberships
	if claims.Role != "authenticated" || claims.IsAnonymous {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"is_anonymous", claims.IsAnonymous,
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the JWT verifier.
// keyfunc v3 stops refreshing when its context is cancelled, so this is a
// no-op kept for graceful shutdown symmetry.
func (v *SupabaseJWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
