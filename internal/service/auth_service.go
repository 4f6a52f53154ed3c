package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cmu-sei/Gameboard-sub002/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService signs and validates the JWTs used by the thin HTTP surface.
// Real deployments front this with an external identity provider; the
// claims shape is what the core cares about.
type AuthService struct {
	adminUsername string
	adminPassword string
	jwtSecret     []byte
}

func NewAuthService(adminUsername, adminPassword, jwtSecret string) *AuthService {
	return &AuthService{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		jwtSecret:     []byte(jwtSecret),
	}
}

// Login validates admin credentials and returns a signed admin token.
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return nil, ErrInvalidCredentials
	}

	userID := "admin_" + uuid.New().String()[:8]
	claims := &model.UserClaims{
		UserID:  userID,
		Name:    username,
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: signed, UserID: userID}, nil
}

// ValidateToken parses and verifies a user token.
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	claims := &model.UserClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
