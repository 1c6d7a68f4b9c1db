package httputil

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitemonmedoc/medoc/internal/repository"
	"github.com/vitemonmedoc/medoc/pkg/errors"
)

// Error is the body of every non-2xx response. Success bodies are the bare
// resource so clients decode them directly.
type Error struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusFor maps an error onto the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}

	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Code {
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrBadRequest, errors.ErrValidation:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrMissingToken:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondWithError sends the error envelope. Internal failures never leak
// their cause.
func RespondWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := "Erreur interne du serveur"

	if appErr, ok := errors.As(err); ok && status != http.StatusInternalServerError {
		message = appErr.Message
	} else if status == http.StatusNotFound {
		message = "Ressource introuvable"
	} else if status == http.StatusConflict {
		message = "Ressource déjà existante"
	} else if status == http.StatusGatewayTimeout {
		message = "Délai de traitement dépassé"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Error{Status: "error", Message: message})
}

func RespondWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Error{Status: "error", Message: message})
}
