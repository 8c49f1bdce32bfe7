package adminapi

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens, the same split
// the wire protocol's REGISTER_CLIENT session has no notion of: the admin
// API is bearer-token authenticated end to end, unlike the unauthenticated
// client<->coordinator document protocol (spec.md Non-goals).
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("adminapi: invalid token")
	ErrExpiredToken     = errors.New("adminapi: token expired")
	ErrInvalidTokenType = errors.New("adminapi: wrong token type")
)

// Claims is the JWT payload carried by every admin API bearer token.
type Claims struct {
	jwt.RegisteredClaims

	UserID             string    `json:"uid"`
	Username           string    `json:"username"`
	Role               string    `json:"role"`
	TokenType          TokenType `json:"token_type"`
	MustChangePassword bool      `json:"must_change_password,omitempty"`
}

func (c *Claims) IsAccessToken() bool  { return c.TokenType == TokenTypeAccess }
func (c *Claims) IsRefreshToken() bool { return c.TokenType == TokenTypeRefresh }
func (c *Claims) IsAdmin() bool        { return c.Role == RoleAdmin }

// jwtService issues and validates the admin API's HMAC-signed bearer
// tokens. Access tokens live for cfg.TokenTTL; refresh tokens live 8x
// longer, since config.AdminAPIConfig carries a single TokenTTL rather than
// a split access/refresh pair.
type jwtService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newJWTService(secret string, accessTTL time.Duration) *jwtService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &jwtService{
		secret:     []byte(secret),
		issuer:     "docfs-coordinator",
		accessTTL:  accessTTL,
		refreshTTL: accessTTL * 8,
	}
}

// TokenPair is the login/refresh response body, matching
// pkg/apiclient.TokenResponse field for field.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *jwtService) generatePair(op *Operator) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.accessTTL)
	access, err := s.generate(op, TokenTypeAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generate(op, TokenTypeRefresh, now, now.Add(s.refreshTTL))
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *jwtService) generate(op *Operator, tokenType TokenType, issuedAt, expiresAt time.Time) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   op.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:             op.ID,
		Username:           op.Username,
		Role:               op.Role,
		TokenType:          tokenType,
		MustChangePassword: op.MustChangePassword,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("adminapi: sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("adminapi: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *jwtService) validateAccess(tokenString string) (*Claims, error) {
	claims, err := s.validate(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAccessToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func (s *jwtService) validateRefresh(tokenString string) (*Claims, error) {
	claims, err := s.validate(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken() {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}

func newOperatorID() string { return uuid.NewString() }

// randomPassword generates a bootstrap password readable enough to retype
// from a log line: base32 avoids the visually ambiguous characters base64
// mixes in.
func randomPassword() string {
	buf := make([]byte, 15)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
}
