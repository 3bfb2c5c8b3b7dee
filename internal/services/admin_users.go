package services

import (
	"errors"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
)

type AdminCreateUserInput struct {
	RegisterInput
	Role string `json:"role" form:"role"`
}

type AdminUpdateUserInput struct {
	Email           *string `json:"email" form:"email" validate:"omitempty,max=254"`
	Role            *string `json:"role" form:"role" validate:"omitempty,oneof=user admin"`
	ExperienceLevel *string `json:"experience_level" form:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	FirstName       *string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
}

func (service *AuthService) ListUsers() ([]models.User, error) {
	users, err := service.users.List()
	if err != nil {
		return nil, storageError(err)
	}
	return users, nil
}

// CreateUser lets an administrator create an account with an explicit role.
func (service *AuthService) CreateUser(input AdminCreateUserInput) (models.User, error) {
	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	return service.createUser(input.RegisterInput, role)
}

// UpdateUser applies an administrator's edits to another account. An
// administrator cannot demote themselves.
func (service *AuthService) UpdateUser(actorID uint, userID uint, input AdminUpdateUserInput) (models.User, error) {
	if err := Validate(input); err != nil {
		return models.User{}, err
	}
	if _, err := service.FindByID(userID); err != nil {
		return models.User{}, err
	}

	updates := make(map[string]any)
	if input.Email != nil {
		email := NormalizeAuthEmail(*input.Email)
		if email == "" {
			return models.User{}, newValidationError("email", "must be a valid email address")
		}
		existing, err := service.users.FindByNormalizedEmail(email)
		switch {
		case err == nil && existing.ID != userID:
			return models.User{}, ErrDuplicateEmail
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return models.User{}, storageError(err)
		}
		updates["email"] = email
	}
	if input.Role != nil {
		if actorID == userID && *input.Role != models.RoleAdmin {
			return models.User{}, newValidationError("role", "you cannot remove your own admin role")
		}
		updates["role"] = *input.Role
	}
	if input.ExperienceLevel != nil {
		updates["experience_level"] = *input.ExperienceLevel
	}
	if input.FirstName != nil {
		updates["first_name"] = nullableText(input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = nullableText(input.LastName)
	}

	if len(updates) > 0 {
		if err := service.users.UpdateByID(userID, updates); err != nil {
			if errors.Is(err, db.ErrDuplicate) {
				return models.User{}, ErrDuplicateEmail
			}
			return models.User{}, translateRepositoryError(err)
		}
	}
	return service.FindByID(userID)
}
