package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/corefs/docfs/pkg/config"
	"github.com/corefs/docfs/pkg/metadatastore"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	cfg := config.AdminAPIConfig{
		JWTSecret:    "test-secret-at-least-32-bytes-long!!",
		TokenTTL:     time.Minute,
		BcryptCost:   4,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
	store := metadatastore.New(metadatastore.Config{})
	s, err := NewServer(cfg, t.TempDir(), store)
	require.NoError(t, err)

	password, err := bootstrapPasswordForTest(s)
	require.NoError(t, err)
	return s, password
}

// bootstrapPasswordForTest overwrites the randomly generated bootstrap
// password (which is only logged, never returned) with a known value,
// without disturbing MustChangePassword so the gate tests below still see
// it set right after bootstrap.
func bootstrapPasswordForTest(s *Server) (string, error) {
	const known = "initial-test-password"
	hash, err := bcrypt.GenerateFromPassword([]byte(known), s.operators.cost)
	if err != nil {
		return "", err
	}
	if _, err := s.operators.update("admin", func(op *Operator) {
		op.PasswordHash = string(hash)
	}); err != nil {
		return "", err
	}
	return known, nil
}

func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginSucceedsWithBootstrapAdmin(t *testing.T) {
	s, password := newTestServer(t)
	rec := doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "admin", Password: password})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func login(t *testing.T, s *Server, password string) TokenPair {
	t.Helper()
	return loginAs(t, s, "admin", password)
}

func loginAs(t *testing.T, s *Server, username, password string) TokenPair {
	t.Helper()
	rec := doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/auth/login", "", loginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func TestChangeOwnPasswordUnlocksOtherRoutes(t *testing.T) {
	s, password := newTestServer(t)
	pair := login(t, s, password)

	// MustChangePassword is still set right after bootstrap, so /users is denied...
	rec := doRequest(t, s.newRouter(), http.MethodGet, "/api/v1/users", pair.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// ...until the password is changed.
	rec = doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/users/me/password/", pair.AccessToken,
		changePasswordRequest{NewPassword: "a-new-strong-password"})
	require.Equal(t, http.StatusOK, rec.Code)

	var newPair TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &newPair))

	rec = doRequest(t, s.newRouter(), http.MethodGet, "/api/v1/users", newPair.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	s, password := newTestServer(t)
	pair := login(t, s, password)
	doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/users/me/password/", pair.AccessToken,
		changePasswordRequest{NewPassword: "a-new-strong-password"})
	pair = login(t, s, "a-new-strong-password")

	rec := doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/users", pair.AccessToken,
		createUserRequest{Username: "carol", Password: "carol-password"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, s.operators.create(&Operator{ID: newOperatorID(), Username: "bob", Role: RoleOperator, Enabled: true}, "bob-password"))
	bobPair := loginAs(t, s, "bob", "bob-password")

	rec = doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/users", bobPair.AccessToken,
		createUserRequest{Username: "dave", Password: "dave-password"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListNodesRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s.newRouter(), http.MethodGet, "/api/v1/nodes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListNodesReturnsClusterState(t *testing.T) {
	s, password := newTestServer(t)
	pair := login(t, s, password)
	doRequest(t, s.newRouter(), http.MethodPost, "/api/v1/users/me/password/", pair.AccessToken,
		changePasswordRequest{NewPassword: "a-new-strong-password"})
	pair = login(t, s, "a-new-strong-password")

	s.store.RegisterNode("node-1", "10.0.0.1", 9001, 10001, nil)

	rec := doRequest(t, s.newRouter(), http.MethodGet, "/api/v1/nodes", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var nodes []nodeView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "node-1", nodes[0].ID)
	assert.True(t, nodes[0].Alive)
}
