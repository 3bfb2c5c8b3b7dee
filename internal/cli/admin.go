package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/raugupatis/raugupatis-log/internal/services"
	"gorm.io/gorm"
)

// PasswordPrompt asks for a secret and returns it without the line ending.
type PasswordPrompt func(label string) (string, error)

// TerminalPrompt reads passwords from stdin with echo turned off. Prompts
// share one reader so piped answers are consumed a line at a time.
func TerminalPrompt(stdin *os.File, out io.Writer) PasswordPrompt {
	if stdin == nil {
		return func(string) (string, error) {
			return "", fmt.Errorf("read password: %w", errNoTerminal)
		}
	}

	reader := bufio.NewReader(stdin)
	return func(label string) (string, error) {
		fmt.Fprint(out, label)
		value, err := withEchoDisabled(stdin, func() (string, error) {
			return readSecretLine(reader)
		})
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return value, nil
	}
}

// RunCreateAdminCommand creates an administrator account. The password is
// asked for twice and never accepted on the command line.
func RunCreateAdminCommand(database *gorm.DB, email string, prompt PasswordPrompt, out io.Writer) error {
	normalizedEmail, err := normalizeCommandEmail(email)
	if err != nil {
		return err
	}

	password, err := prompt("Password: ")
	if err != nil {
		return err
	}
	confirmation, err := prompt("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirmation {
		return errors.New("passwords do not match")
	}

	authService := services.NewAuthService(db.NewRepositories(database).Users)
	user, err := authService.CreateUser(services.AdminCreateUserInput{
		RegisterInput: services.RegisterInput{Email: normalizedEmail, Password: password},
		Role:          models.RoleAdmin,
	})
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("invalid admin account: %s", strings.TrimPrefix(validationErr.Error(), "validation failed: "))
		}
		if errors.Is(err, services.ErrDuplicateEmail) {
			return fmt.Errorf("user %s already exists", normalizedEmail)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Administrator %s created (id %d)\n", user.Email, user.ID)
	return nil
}
