package services

import (
	"context"
	"encoding/json"
	"eshop/apperror"
	"eshop/jwt"
	"eshop/models"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupUsers(t *testing.T) (*UserService, *jwt.Issuer, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	issuer := jwt.NewIssuer("test-secret", time.Hour)
	service := NewUserService(db, issuer, testLogger())
	service.bcryptCost = bcrypt.MinCost
	return service, issuer, db
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Name:     "Alice",
		Email:    email,
		Password: "secret",
		Phone:    "+420702241333",
		City:     "Prague",
		Country:  "Czech Republic",
	}
}

func TestRegister(t *testing.T) {
	service, _, db := setupUsers(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerInput("  Alice@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

	_, err = service.Register(ctx, registerInput("alice@example.com"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, int64(1), countRows(t, db, &models.User{}))
}

func TestRegister_Validation(t *testing.T) {
	service, _, db := setupUsers(t)

	noPassword := registerInput("bob@example.com")
	noPassword.Password = ""
	badEmail := registerInput("not-an-email")
	noName := registerInput("carol@example.com")
	noName.Name = ""

	for name, input := range map[string]RegisterInput{
		"no password": noPassword,
		"bad email":   badEmail,
		"no name":     noName,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.Register(context.Background(), input)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}
	assert.Zero(t, countRows(t, db, &models.User{}))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	service, _, _ := setupUsers(t)

	user, err := service.Register(context.Background(), registerInput("alice@example.com"))
	require.NoError(t, err)

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "passwordHash")
	assert.NotContains(t, fields, "PasswordHash")
	assert.Equal(t, "alice@example.com", fields["email"])
}

func TestLogin(t *testing.T) {
	service, issuer, _ := setupUsers(t)
	ctx := context.Background()

	input := registerInput("admin@example.com")
	input.IsAdmin = true
	user, err := service.Register(ctx, input)
	require.NoError(t, err)

	result, err := service.Login(ctx, LoginInput{Email: "Admin@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", result.User)
	assert.True(t, result.IsAdmin)

	claims, err := issuer.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestLogin_Failures(t *testing.T) {
	service, _, _ := setupUsers(t)
	ctx := context.Background()

	_, err := service.Register(ctx, registerInput("alice@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   LoginInput
		message string
	}{
		{"unknown email", LoginInput{Email: "nobody@example.com", Password: "secret"}, "user not found"},
		{"wrong password", LoginInput{Email: "alice@example.com", Password: "nope"}, "password or email is incorrect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.Login(ctx, tt.input)
			assert.Nil(t, result)

			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestPatchUser_OnlyAllowedFields(t *testing.T) {
	service, _, _ := setupUsers(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerInput("alice@example.com"))
	require.NoError(t, err)

	var patch UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Alice Smith",
		"city": "Brno",
		"email": "evil@example.com",
		"isAdmin": true,
		"passwordHash": "x"
	}`), &patch))

	updated, err := service.PatchUser(ctx, user.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", updated.Name)
	assert.Equal(t, "Brno", updated.City)
	assert.Equal(t, "Czech Republic", updated.Country)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.False(t, updated.IsAdmin)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	_, err = service.PatchUser(ctx, uuid.NewString(), patch)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteUser(t *testing.T) {
	service, _, _ := setupUsers(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerInput("alice@example.com"))
	require.NoError(t, err)

	count, err := service.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, service.DeleteUser(ctx, user.ID))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(service.DeleteUser(ctx, user.ID)))

	_, err = service.GetUser(ctx, user.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	users, err := service.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
