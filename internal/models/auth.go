package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the actor roles recognised by the RBAC system.
type UserRole string

const (
	RoleHospital UserRole = "HOSPITAL"
	RoleDonor    UserRole = "DONOR"
	RolePatient  UserRole = "PATIENT"
)

// HospitalLoginRequest holds hospital credentials.
type HospitalLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DonorLoginRequest authenticates a donor by contact number or email.
type DonorLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and actor info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Actor       ActorInfo `json:"actor"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ActorInfo describes the authenticated actor in responses.
type ActorInfo struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Role UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	ActorID string   `json:"actor_id"`
	Role    UserRole `json:"role"`
	Name    string   `json:"name"`
	jwt.RegisteredClaims
}
