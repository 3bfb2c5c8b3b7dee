package services

import (
	"errors"

	"github.com/raugupatis/raugupatis-log/internal/db"
	"github.com/raugupatis/raugupatis-log/internal/models"
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	List() ([]models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
	SetLocked(userID uint, locked bool) error
	UpdateByID(userID uint, updates map[string]any) error
}

type RegisterInput struct {
	Email           string  `json:"email" form:"email" validate:"required,max=254"`
	Password        string  `json:"password" form:"password" validate:"required"`
	ExperienceLevel string  `json:"experience_level" form:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	FirstName       *string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
}

type UpdateProfileInput struct {
	FirstName         *string `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName          *string `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	ExperienceLevel   *string `json:"experience_level" form:"experience_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	PreferredTempUnit *string `json:"preferred_temp_unit" form:"preferred_temp_unit" validate:"omitempty,oneof=fahrenheit celsius"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required"`
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a regular user account. The caller decides whether to
// open a session afterwards.
func (service *AuthService) Register(input RegisterInput) (models.User, error) {
	return service.createUser(input, models.RoleUser)
}

func (service *AuthService) createUser(input RegisterInput, role string) (models.User, error) {
	verr := &ValidationError{}
	if err := Validate(input); err != nil {
		if !asValidationError(err, &verr) {
			return models.User{}, err
		}
	}

	if role != models.RoleUser && role != models.RoleAdmin {
		verr.add("role", "must be one of: user, admin")
	}
	email := NormalizeAuthEmail(input.Email)
	if input.Email != "" && email == "" {
		verr.add("email", "must be a valid email address")
	}
	if input.Password != "" {
		if problem := passwordProblem(input.Password); problem != "" {
			verr.add("password", problem)
		}
	}
	if err := verr.orNil(); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, storageError(err)
	}
	if exists {
		return models.User{}, ErrDuplicateEmail
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	experience := input.ExperienceLevel
	if experience == "" {
		experience = models.ExperienceBeginner
	}

	user := models.User{
		Email:             email,
		PasswordHash:      hash,
		Role:              role,
		ExperienceLevel:   experience,
		FirstName:         optionalName(input.FirstName),
		LastName:          optionalName(input.LastName),
		PreferredTempUnit: models.TempUnitFahrenheit,
	}
	if err := service.users.Create(&user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, storageError(err)
	}
	return user, nil
}

// Authenticate resolves credentials to a user. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials; a locked account yields
// ErrAccountLocked only after the password has been verified.
func (service *AuthService) Authenticate(emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, storageError(err)
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	if user.IsLocked {
		return models.User{}, ErrAccountLocked
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, translateRepositoryError(err)
	}
	return user, nil
}

// SetLocked locks or unlocks an account. An administrator cannot lock
// their own account.
func (service *AuthService) SetLocked(actorID uint, userID uint, locked bool) error {
	if locked && actorID == userID {
		return newValidationError("user_id", "you cannot lock your own account")
	}
	return translateRepositoryError(service.users.SetLocked(userID, locked))
}

func (service *AuthService) UpdateProfile(userID uint, input UpdateProfileInput) (models.User, error) {
	if err := Validate(input); err != nil {
		return models.User{}, err
	}

	updates := make(map[string]any)
	if input.FirstName != nil {
		updates["first_name"] = nullableText(input.FirstName)
	}
	if input.LastName != nil {
		updates["last_name"] = nullableText(input.LastName)
	}
	if input.ExperienceLevel != nil {
		updates["experience_level"] = *input.ExperienceLevel
	}
	if input.PreferredTempUnit != nil {
		updates["preferred_temp_unit"] = *input.PreferredTempUnit
	}

	if len(updates) > 0 {
		if err := service.users.UpdateByID(userID, updates); err != nil {
			return models.User{}, translateRepositoryError(err)
		}
	}
	return service.FindByID(userID)
}

func (service *AuthService) ChangePassword(userID uint, input ChangePasswordInput) error {
	if err := Validate(input); err != nil {
		return err
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		return translateRepositoryError(err)
	}
	if !VerifyPassword(user.PasswordHash, input.CurrentPassword) {
		return newValidationError("current_password", "is incorrect")
	}
	if err := passwordFieldError("new_password", input.NewPassword); err != nil {
		return err
	}
	if input.NewPassword == input.CurrentPassword {
		return newValidationError("new_password", "must differ from the current password")
	}

	return service.SetPassword(userID, input.NewPassword)
}

// SetPassword replaces a password without checking the old one. It backs
// the administrative reset command.
func (service *AuthService) SetPassword(userID uint, password string) error {
	if err := passwordFieldError("password", password); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return translateRepositoryError(service.users.UpdatePassword(userID, hash))
}
