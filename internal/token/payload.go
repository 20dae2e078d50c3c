package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleOfficer    = "officer"
	RoleStudent    = "student"
)

// Principal is the authenticated caller behind a token.
type Principal struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FacultyID string `json:"facultyId,omitempty"`
	Name      string `json:"name,omitempty"`
}

type Payload struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FacultyID string `json:"facultyId,omitempty"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewPayload(principal Principal, duration time.Duration) (payload Payload, err error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return payload, fmt.Errorf("failed to generate tokenID: %w", err)
	}

	payload = Payload{
		Email:     principal.Email,
		Role:      principal.Role,
		FacultyID: principal.FacultyID,
		Name:      principal.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Issuer:    "complaint-desk",
			Subject:   principal.ID,
			Audience:  jwt.ClaimStrings{"client"},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}

	return payload, nil
}

// Principal returns the caller described by the payload.
func (payload *Payload) Principal() Principal {
	return Principal{
		ID:        payload.Subject,
		Email:     payload.Email,
		Role:      payload.Role,
		FacultyID: payload.FacultyID,
		Name:      payload.Name,
	}
}

// ExpiresAtTime returns the expiry, or the zero time when the token never expires.
func (payload *Payload) ExpiresAtTime() time.Time {
	if payload.ExpiresAt == nil {
		return time.Time{}
	}
	return payload.ExpiresAt.Time
}
