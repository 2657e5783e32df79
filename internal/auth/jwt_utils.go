package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Admin identifies the tenant a token was issued to.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims defines what is inside the token
type Claims struct {
	Admin Admin `json:"admin"`
	jwt.RegisteredClaims
}

// TokenManager signs and checks HS256 access tokens with one shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// GenerateToken creates a signed JWT for a tenant
func (m *TokenManager) GenerateToken(tenantID, email string) (string, error) {
	now := m.now()
	claims := &Claims{
		Admin: Admin{ID: tenantID, Email: email},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken checks if a token is forged, expired or carries no tenant
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Admin.ID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
