package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitemonmedoc/medoc/internal/repository"
	"github.com/vitemonmedoc/medoc/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"repository not found", fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound},
		{"duplicate", repository.ErrDuplicate, http.StatusConflict},
		{"validation", errors.NewValidation("nom is required", nil), http.StatusBadRequest},
		{"unauthorized", errors.NewUnauthorized("bad", nil), http.StatusUnauthorized},
		{"forbidden", errors.NewForbidden("no"), http.StatusForbidden},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"app error message", errors.NewUnauthorized("Nom d'utilisateur ou mot de passe incorrect.", nil), http.StatusUnauthorized, "Nom d'utilisateur ou mot de passe incorrect."},
		{"internal hides cause", fmt.Errorf("pq: connection refused"), http.StatusInternalServerError, "Erreur interne du serveur"},
		{"not found", repository.ErrNotFound, http.StatusNotFound, "Ressource introuvable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondWithError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
