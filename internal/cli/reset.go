package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/security"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

// RunResetPasswordCommand replaces a user's password with a generated one
// and prints it to out. Live sessions of that user are left alone.
func RunResetPasswordCommand(database *gorm.DB, email string, out io.Writer) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	repositories := db.NewRepositories(database)
	user, err := repositories.Users.FindByNormalizedEmail(normalizedEmail)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("user %s not found", normalizedEmail)
		}
		return fmt.Errorf("load user: %w", err)
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	authService := services.NewAuthService(repositories.Users)
	if err := authService.SetPassword(user.ID, temporaryPassword); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "Ask the user to change it from the profile page after signing in.")
	return nil
}

func normalizeCommandEmail(email string) (string, error) {
	if email == "" {
		return "", errors.New("email is required")
	}
	normalized := services.NormalizeAuthEmail(email)
	if normalized == "" {
		return "", fmt.Errorf("invalid email address %q", email)
	}
	return normalized, nil
}
