package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
	"moodr-backend/internal/models"
	"moodr-backend/internal/store"
)

// JWTSecret is the signing secret handler tests configure the
// middleware with.
const JWTSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

// NewStore opens an in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive for the
// test's duration.
func NewStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := store.CreateSchema(db); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return store.New(db)
}

// CreateUser seeds a user row with the given role.
func CreateUser(t *testing.T, s *store.Store, role models.Role) *models.User {
	t.Helper()

	user, err := s.GetOrCreateUser(uuid.New(), "test-user")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	if role != models.RoleFree {
		if err := s.UpdateUserRole(user.ID, role); err != nil {
			t.Fatalf("failed to set test user role: %v", err)
		}
		user.Role = role
	}

	return user
}

// CreateProject seeds a project owned by the given user.
func CreateProject(t *testing.T, s *store.Store, userID uuid.UUID, name string) *models.Project {
	t.Helper()

	project, err := s.CreateProject(userID, name)
	if err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateImage seeds an image in the given project.
func CreateImage(t *testing.T, s *store.Store, projectID uuid.UUID, url string) *models.Image {
	t.Helper()

	image, err := s.CreateImage(projectID, url)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}

	return image
}

// Token signs a bearer token for the given user id.
func Token(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID.String(),
		"username": "test-user",
	})
	signed, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	return signed
}

// MakeRequest builds a JSON test request, optionally authenticated.
func MakeRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
