package http

import (
	"encoding/json"
	"net/http"

	"github.com/opsdesk/opsdesk/internal/authz"
	"github.com/opsdesk/opsdesk/internal/command"
	"github.com/opsdesk/opsdesk/pkg/apperror"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeResult maps a command result onto an HTTP response.
func writeResult(w http.ResponseWriter, res command.Result, successStatus int) {
	if res.Success {
		writeJSON(w, successStatus, res)
		return
	}
	writeJSON(w, statusForCode(res.Code), res)
}

func statusForCode(code apperror.Code) int {
	switch code {
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeForbidden:
		return http.StatusForbidden
	case apperror.CodeValidation:
		return http.StatusUnprocessableEntity
	case apperror.CodeConflict:
		return http.StatusConflict
	case apperror.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeReadError maps a read-path error onto an HTTP response.
func writeReadError(w http.ResponseWriter, err error) {
	if authz.IsAuthorizationError(err) {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	switch apperror.CodeOf(err) {
	case apperror.CodeNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case apperror.CodeForbidden:
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
