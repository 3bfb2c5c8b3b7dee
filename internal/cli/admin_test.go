package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
)

func scriptedPrompt(answers ...string) PasswordPrompt {
	return func(string) (string, error) {
		if len(answers) == 0 {
			return "", errors.New("no more answers")
		}
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
}

func TestCreateAdminCommand(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t)
	var out bytes.Buffer

	if err := RunCreateAdminCommand(database, "Admin@Example.com", scriptedPrompt("adminpass123", "adminpass123"), &out); err != nil {
		t.Fatalf("RunCreateAdminCommand returned error: %v", err)
	}
	if !strings.Contains(out.String(), "admin@example.com") {
		t.Fatalf("expected confirmation output, got %q", out.String())
	}

	authService := services.NewAuthService(db.NewRepositories(database).Users)
	user, err := authService.Authenticate("admin@example.com", "adminpass123")
	if err != nil {
		t.Fatalf("expected admin to authenticate: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}

	err = RunCreateAdminCommand(database, "admin@example.com", scriptedPrompt("otherpass123", "otherpass123"), &out)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate admin error, got %v", err)
	}
}

func TestCreateAdminCommandRejectsBadPasswords(t *testing.T) {
	t.Parallel()

	database := openTestDatabase(t)
	var out bytes.Buffer

	err := RunCreateAdminCommand(database, "admin@example.com", scriptedPrompt("adminpass123", "adminpass124"), &out)
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}

	err = RunCreateAdminCommand(database, "admin@example.com", scriptedPrompt("short", "short"), &out)
	if err == nil || !strings.Contains(err.Error(), "password") {
		t.Fatalf("expected password policy error, got %v", err)
	}

	var count int64
	if err := database.Table("users").Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no users created, got %d", count)
	}
}
