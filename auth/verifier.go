// Package auth verifies JWT bearer tokens for the ingest API.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"example/chess-ingest/app/config"
)

const (
	defaultLeeway = 30 * time.Second

	// ScopeRead allows fetching profiles, archives, games and job status.
	ScopeRead = "ingest:read"
	// ScopeWrite allows submitting ingestion jobs.
	ScopeWrite = "ingest:write"
)

var errNotConfigured = errors.New("AUTH_ISSUER and AUTH_AUDIENCE must be set")

// Verifier validates RS256/384/512 access tokens against a JWKS endpoint.
type Verifier struct {
	issuer   string
	audience string
	keyfunc  keyfunc.Keyfunc
	parser   *jwt.Parser
}

// NewVerifierFromConfig builds a verifier from the AUTH_* settings.
func NewVerifierFromConfig(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errNotConfigured
	}
	return NewVerifier(cfg.Issuer, cfg.Audience, cfg.JWKSURL)
}

// NewVerifier builds a verifier. jwksURL defaults to {issuer}.well-known/jwks.json.
func NewVerifier(issuer, audience, jwksURL string) (*Verifier, error) {
	iss := normalizeIssuer(issuer)
	if iss == "" {
		return nil, errors.New("issuer must be set")
	}
	if audience == "" {
		return nil, errors.New("audience must be set")
	}
	if jwksURL == "" {
		jwksURL = iss + ".well-known/jwks.json"
	}

	kf, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to init JWKS keyfunc: %w", err)
	}

	parser := jwt.NewParser(
		jwt.WithIssuer(iss),
		jwt.WithAudience(audience),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name, jwt.SigningMethodRS384.Name, jwt.SigningMethodRS512.Name}),
	)

	return &Verifier{issuer: iss, audience: audience, keyfunc: kf, parser: parser}, nil
}

// Verify parses and validates a token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := v.parser.Parse(tokenString, v.keyfunc.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	claims := &Claims{
		Subject:   stringClaim(mc, "sub"),
		Issuer:    stringClaim(mc, "iss"),
		Audience:  audienceClaim(mc["aud"]),
		ExpiresAt: expiryClaim(mc["exp"]),
		Scopes:    strings.Fields(stringClaim(mc, "scope")),
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing sub")
	}
	return claims, nil
}

func normalizeIssuer(issuer string) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return ""
	}
	if !strings.HasSuffix(issuer, "/") {
		issuer += "/"
	}
	return issuer
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func audienceClaim(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}

func expiryClaim(raw any) time.Time {
	switch v := raw.(type) {
	case float64:
		return time.Unix(int64(v), 0)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return time.Unix(i, 0)
		}
	case int64:
		return time.Unix(v, 0)
	}
	return time.Time{}
}
