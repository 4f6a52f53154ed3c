package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims carried by authenticated requests.
type UserClaims struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	IsAdmin    bool   `json:"isAdmin"`
	IsElevated bool   `json:"isElevated"`
	jwt.RegisteredClaims
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
