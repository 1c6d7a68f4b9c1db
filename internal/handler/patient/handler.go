package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vitemonmedoc/medoc/internal/handler"
	"github.com/vitemonmedoc/medoc/internal/middleware"
	"github.com/vitemonmedoc/medoc/internal/model"
	"github.com/vitemonmedoc/medoc/internal/service/patient"
	"github.com/vitemonmedoc/medoc/pkg/httputil"
	"github.com/vitemonmedoc/medoc/pkg/metrics"
)

type Handler struct {
	service patient.PatientService
	auth    *middleware.AuthMiddleware
	metrics *metrics.Metrics
}

func NewHandler(service patient.PatientService, auth *middleware.AuthMiddleware, m *metrics.Metrics) *Handler {
	return &Handler{service: service, auth: auth, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/medecin", h.auth.Authenticate(), h.auth.RequireRole(model.RoleDoctor), h.ListMyPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.CreatePatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context(), model.PatientFilter{})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

// ListMyPatients is scoped to the doctor named by the bearer token.
func (h *Handler) ListMyPatients(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		httputil.RespondWithStatus(c, http.StatusUnauthorized, "Token d’authentification manquant")
		return
	}

	doctor := claims.UserID
	patients, err := h.service.ListPatients(c.Request.Context(), model.PatientFilter{MedecinID: &doctor})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), req)
	h.record("create", err)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdatePatient takes a partial body: absent keys are kept, null clears.
func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var update model.PatientUpdate
	if !handler.BindJSON(c, &update) {
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, update)
	h.record("update", err)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	err := h.service.DeletePatient(c.Request.Context(), id)
	h.record("delete", err)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) record(op string, err error) {
	if h.metrics != nil {
		h.metrics.RecordWrite("patient", op, err)
	}
}
