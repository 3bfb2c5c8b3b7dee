package services

import (
	"net/mail"
	"strings"
)

// NormalizeAuthEmail lowercases and trims an address and returns "" when it
// is not a plain mailbox with a dotted domain.
func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return ""
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" || strings.TrimSpace(passwordRaw) == "" {
		return "", "", ErrInvalidCredentials
	}
	return email, passwordRaw, nil
}

// optionalName trims a name field and maps blank input to nil.
func optionalName(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// nullableText is optionalName shaped for a column update map, where blank
// input becomes NULL.
func nullableText(raw *string) any {
	if name := optionalName(raw); name != nil {
		return *name
	}
	return nil
}
