package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/testutil"
)

func TestRegister_Success(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := testutil.DoJSON(t, env.Router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Success bool           `json:"success"`
		Token   string         `json:"token"`
		User    map[string]any `json:"user"`
	}
	testutil.DecodeJSON(t, w, &res)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User["username"])
	assert.NotContains(t, res.User, "password_hash")
	assert.NotContains(t, res.User, "PasswordHash")

	claims, err := env.JWT.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, claims.UserID)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	testutil.RegisterAndGetToken(t, env.Router, "alice")

	w := testutil.DoJSON(t, env.Router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"value already exists"}`, w.Body.String())
}

func TestRegister_Validation(t *testing.T) {
	env := testutil.SetupTestRouter(t)

	w := testutil.DoJSON(t, env.Router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "al",
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"\"username\" length must be at least 3 characters long"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	env := testutil.SetupTestRouter(t)
	testutil.RegisterAndGetToken(t, env.Router, "alice")

	token := testutil.LoginAndGetToken(t, env.Router, "alice@example.com", "password123")
	assert.NotEmpty(t, token)

	w := testutil.DoJSON(t, env.Router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid credentials"}`, w.Body.String())

	w = testutil.DoJSON(t, env.Router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid credentials"}`, w.Body.String())
}
