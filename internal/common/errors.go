// Package common defines sentinel errors shared by the repository, service
// and transport layers. Callers should match them with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token errors. All of them are reported to clients as 401.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrNoActiveCompany is returned when a user has no active company selected.
	ErrNoActiveCompany = errors.New("no active company")
)
