package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/internal/adapter/identity"
	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/internal/domain"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

func TestStatusForCode(t *testing.T) {
	cases := []struct {
		code   apperror.Code
		status int
	}{
		{apperror.CodeNotFound, http.StatusNotFound},
		{apperror.CodeForbidden, http.StatusForbidden},
		{apperror.CodeValidation, http.StatusUnprocessableEntity},
		{apperror.CodeConflict, http.StatusConflict},
		{apperror.CodeUnauthorized, http.StatusUnauthorized},
		{apperror.CodeInternal, http.StatusInternalServerError},
		{apperror.Code(""), http.StatusInternalServerError},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, statusForCode(c.code), string(c.code))
	}
}

func TestWriteResult(t *testing.T) {
	t.Run("success uses the given status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeResult(rec, command.Result{Success: true, Data: map[string]interface{}{"id": "1"}}, http.StatusCreated)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
	})

	t.Run("failure maps the code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeResult(rec, command.Result{Success: false, Error: "denied", Code: apperror.CodeForbidden}, http.StatusOK)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := identity.NewTokenService("test-secret", time.Hour)
	user := domain.NewUser("pat@example.com", "Pat", domain.RoleAdmin, "hash")

	var gotActor *domain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = actorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := authMiddleware(tokens)(next)

	t.Run("valid token puts the actor in context", func(t *testing.T) {
		token, err := tokens.Issue(user)
		assert.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/tickets", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, gotActor)
		assert.Equal(t, user.ID, gotActor.ID)
		assert.Equal(t, domain.RoleAdmin, gotActor.Role)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/tickets", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed scheme is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/tickets", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/tickets", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
