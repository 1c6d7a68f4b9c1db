package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitemonmedoc/medoc/internal/handler"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/pkg/httputil"
	"github.com/vitemonmedoc/medoc/pkg/metrics"
)

type Service interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
}

type Handler struct {
	service Service
	metrics *metrics.Metrics
}

func NewHandler(service Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users/login", h.Login)
}

// Login answers 200 with {token, user} or 401 with the error envelope.
func (h *Handler) Login(c *gin.Context) {
	var creds model.Credentials
	if !handler.BindJSON(c, &creds) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), creds)
	if h.metrics != nil {
		h.metrics.RecordLogin(err)
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
