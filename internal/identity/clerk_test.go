package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func newClerkServer(t *testing.T, handler http.HandlerFunc) *ClerkProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClerkProvider(ClerkConfig{SecretKey: "sk_test", BaseURL: srv.URL + "/"}, nil, nil)
}

func TestClerkCreateIdentitySendsRoleMetadata(t *testing.T) {
	var got map[string]interface{}
	provider := newClerkServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user_abc","username":"jdoe"}`))
	})

	email := "jdoe@example.com"
	identity, err := provider.CreateIdentity(context.Background(), NewIdentity{
		Username:  "jdoe",
		Password:  "supersecret",
		FirstName: "John",
		LastName:  "Doe",
		Email:     &email,
		Role:      models.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, "user_abc", identity.ID)
	assert.Equal(t, models.RoleStudent, identity.Role)

	assert.Equal(t, "jdoe", got["username"])
	assert.Equal(t, "John", got["first_name"])
	assert.Equal(t, []interface{}{"jdoe@example.com"}, got["email_address"])
	assert.Equal(t, map[string]interface{}{"role": "student"}, got["public_metadata"])
}

func TestClerkUpdateIdentityOmitsEmptyPassword(t *testing.T) {
	var got map[string]interface{}
	provider := newClerkServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/user_abc", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"user_abc"}`))
	})

	username := "jdoe2"
	empty := ""
	err := provider.UpdateIdentity(context.Background(), "user_abc", IdentityUpdate{Username: &username, Password: &empty})
	require.NoError(t, err)
	assert.Equal(t, "jdoe2", got["username"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "first_name")
}

func TestClerkDeleteIdentityMapsNotFound(t *testing.T) {
	provider := newClerkServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":"resource_not_found","message":"not found"}]}`))
	})

	err := provider.DeleteIdentity(context.Background(), "user_missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClerkErrorCarriesCodeAndMessage(t *testing.T) {
	provider := newClerkServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"code":"form_password_pwned","message":"bad password","long_message":"Password has been found in an online data breach."}]}`))
	})

	_, err := provider.CreateIdentity(context.Background(), NewIdentity{Username: "jdoe", Password: "password1", Role: models.RoleTeacher})
	require.Error(t, err)

	var clerkErr *ClerkError
	require.True(t, errors.As(err, &clerkErr))
	assert.Equal(t, http.StatusUnprocessableEntity, clerkErr.Status)
	assert.Equal(t, "form_password_pwned", clerkErr.Code)
	assert.Equal(t, "Password has been found in an online data breach.", clerkErr.Message)
}

func TestClerkUsernameTaken(t *testing.T) {
	provider := newClerkServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"code":"form_identifier_exists","message":"taken"}]}`))
	})

	_, err := provider.CreateIdentity(context.Background(), NewIdentity{Username: "jdoe", Password: "password1"})
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}
