package jwt

import (
	"errors"
	"fmt"
	"time"

	"restaurant-pos/models"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var ErrTokenRevoked = errors.New("token revoked or unknown")

// Claims carried by staff tokens.
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 staff tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken returns the signed token and its expiry.
func (m *Manager) GenerateToken(userID uint, username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// VerifyToken checks the signature and expiry, then that the token has not been
// logged out (its login_tokens row still exists). Username and role are taken
// from the account as stored now, so a demoted or removed user loses access
// before the token expires.
func (m *Manager) VerifyToken(tokenString string, db *gorm.DB) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	var loginToken models.LoginToken
	err = db.Where("token = ?", tokenString).First(&loginToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("look up login token: %w", err)
	}

	var user models.AdminUser
	err = db.First(&user, claims.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, fmt.Errorf("look up user %d: %w", claims.UserID, err)
	}
	claims.Username = user.Username
	claims.Role = user.Role

	return claims, nil
}
