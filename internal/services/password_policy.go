package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var ErrWeakPassword = errors.New("weak password")

func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength || len(password) > maxPasswordBytes {
		return ErrWeakPassword
	}
	if strings.TrimSpace(password) == "" {
		return ErrWeakPassword
	}
	return nil
}

func passwordProblem(password string) string {
	if ValidatePasswordStrength(password) == nil {
		return ""
	}
	if len(password) > maxPasswordBytes {
		return "must be at most 72 bytes"
	}
	return "must be at least 8 characters"
}

func passwordFieldError(field string, password string) error {
	if problem := passwordProblem(password); problem != "" {
		return newValidationError(field, problem)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
