package services

import (
	"testing"

	"github.com/raugupatis/raugupatis-log/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHashesPasswordAndAuthenticates(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)

	user, err := auth.Register(RegisterInput{
		Email:           " A@B.com ",
		Password:        "securepass123",
		ExperienceLevel: models.ExperienceBeginner,
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.TempUnitFahrenheit, user.PreferredTempUnit)
	assert.NotEqual(t, "securepass123", user.PasswordHash)

	authenticated, err := auth.Authenticate("a@b.com", "securepass123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)
}

func TestRegisterDefaultsExperienceLevel(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)

	user, err := auth.Register(RegisterInput{Email: "new@example.com", Password: "securepass123"})
	require.NoError(t, err)
	assert.Equal(t, models.ExperienceBeginner, user.ExperienceLevel)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)
	registerTestUser(t, auth, "dup@example.com")

	_, err := auth.Register(RegisterInput{Email: "DUP@example.com", Password: "securepass123"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterReportsFieldErrors(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)

	_, err := auth.Register(RegisterInput{
		Email:           "not-an-email",
		Password:        "short",
		ExperienceLevel: "guru",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be at least 8 characters", verr.Fields["password"])
	assert.Contains(t, verr.Fields["experience_level"], "must be one of")

	_, err = auth.Register(RegisterInput{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["email"])
	assert.Equal(t, "is required", verr.Fields["password"])
}

func TestAuthenticateFailures(t *testing.T) {
	repos := newTestRepositories(t)
	auth := NewAuthService(repos.Users)
	user := registerTestUser(t, auth, "locked@example.com")

	_, err := auth.Authenticate("missing@example.com", "securepass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Authenticate("locked@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrAccountLocked)

	require.NoError(t, auth.SetLocked(999, user.ID, true))
	_, err = auth.Authenticate("locked@example.com", "securepass123")
	assert.ErrorIs(t, err, ErrAccountLocked)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, auth.SetLocked(999, user.ID, false))
	_, err = auth.Authenticate("locked@example.com", "securepass123")
	assert.NoError(t, err)
}

func TestSetLockedRejectsSelfLockAndUnknownUser(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)
	admin := registerTestUser(t, auth, "admin@example.com")

	var verr *ValidationError
	require.ErrorAs(t, auth.SetLocked(admin.ID, admin.ID, true), &verr)
	assert.Contains(t, verr.Fields, "user_id")
	assert.ErrorIs(t, auth.SetLocked(admin.ID, 4242, true), ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)
	user := registerTestUser(t, auth, "changer@example.com")

	var verr *ValidationError
	err := auth.ChangePassword(user.ID, ChangePasswordInput{CurrentPassword: "nope-nope", NewPassword: "brandnewpass"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	err = auth.ChangePassword(user.ID, ChangePasswordInput{CurrentPassword: "securepass123", NewPassword: "tiny"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "new_password")

	require.NoError(t, auth.ChangePassword(user.ID, ChangePasswordInput{CurrentPassword: "securepass123", NewPassword: "brandnewpass"}))
	_, err = auth.Authenticate("changer@example.com", "securepass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate("changer@example.com", "brandnewpass")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)
	user := registerTestUser(t, auth, "profile@example.com")

	first := "  Rūta "
	unit := models.TempUnitCelsius
	level := models.ExperienceAdvanced
	updated, err := auth.UpdateProfile(user.ID, UpdateProfileInput{
		FirstName:         &first,
		ExperienceLevel:   &level,
		PreferredTempUnit: &unit,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Rūta", *updated.FirstName)
	assert.Nil(t, updated.LastName)
	assert.Equal(t, models.TempUnitCelsius, updated.PreferredTempUnit)
	assert.Equal(t, models.ExperienceAdvanced, updated.ExperienceLevel)

	blank := "   "
	updated, err = auth.UpdateProfile(user.ID, UpdateProfileInput{FirstName: &blank})
	require.NoError(t, err)
	assert.Nil(t, updated.FirstName)

	kelvin := "kelvin"
	_, err = auth.UpdateProfile(user.ID, UpdateProfileInput{PreferredTempUnit: &kelvin})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "preferred_temp_unit")
}

func TestAdminCreateAndUpdateUser(t *testing.T) {
	auth := NewAuthService(newTestRepositories(t).Users)
	admin, err := auth.CreateUser(AdminCreateUserInput{
		RegisterInput: RegisterInput{Email: "root@example.com", Password: "securepass123"},
		Role:          models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = auth.CreateUser(AdminCreateUserInput{
		RegisterInput: RegisterInput{Email: "odd@example.com", Password: "securepass123"},
		Role:          "owner",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	member := registerTestUser(t, auth, "member@example.com")
	promote := models.RoleAdmin
	email := "Member2@Example.com"
	updated, err := auth.UpdateUser(admin.ID, member.ID, AdminUpdateUserInput{Role: &promote, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
	assert.Equal(t, "member2@example.com", updated.Email)

	taken := "root@example.com"
	_, err = auth.UpdateUser(admin.ID, member.ID, AdminUpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	demote := models.RoleUser
	_, err = auth.UpdateUser(admin.ID, admin.ID, AdminUpdateUserInput{Role: &demote})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	_, err = auth.UpdateUser(admin.ID, 4242, AdminUpdateUserInput{Role: &demote})
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := auth.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
