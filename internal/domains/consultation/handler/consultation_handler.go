package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/consultation/model"
	"rez-backend/internal/domains/consultation/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// ConsultationHandler xử lý consultation APIs
type ConsultationHandler struct {
	service service.ServiceInterface
}

func NewConsultationHandler(consultationService service.ServiceInterface) *ConsultationHandler {
	return &ConsultationHandler{service: consultationService}
}

// Create godoc
// POST /api/v1/consultations (auth required)
func (h *ConsultationHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultation, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, model.ErrSlotInPast) {
			response.BadRequest(c, "Scheduled slot must be in the future")
			return
		}
		response.InternalServerError(c, "Failed to create consultation")
		return
	}

	response.Success(c, http.StatusCreated, consultation)
}

// ListMine godoc
// GET /api/v1/consultations/my (auth required)
func (h *ConsultationHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	page, limit := utils.ParsePagination(c)
	consultations, total, err := h.service.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch consultations")
		return
	}

	response.Paginated(c, http.StatusOK, consultations, page, limit, total)
}

// ListByStore godoc
// GET /api/v1/admin/stores/:id/consultations
func (h *ConsultationHandler) ListByStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	page, limit := utils.ParsePagination(c)
	consultations, total, err := h.service.ListByStore(c.Request.Context(), storeID, page, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch consultations")
		return
	}

	response.Paginated(c, http.StatusOK, consultations, page, limit, total)
}

// Cancel godoc
// POST /api/v1/consultations/:id/cancel (auth required, chính chủ)
func (h *ConsultationHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid consultation ID")
		return
	}

	consultation, err := h.service.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		h.mapStatusError(c, err)
		return
	}

	response.Success(c, http.StatusOK, consultation)
}

// UpdateStatus godoc
// PATCH /api/v1/admin/consultations/:id/status
func (h *ConsultationHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid consultation ID")
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	consultation, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.mapStatusError(c, err)
		return
	}

	response.Success(c, http.StatusOK, consultation)
}

func (h *ConsultationHandler) mapStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrConsultationNotFound):
		response.NotFound(c, "Consultation not found")
	case errors.Is(err, model.ErrInvalidTransition):
		response.BadRequest(c, "Invalid status transition")
	default:
		response.InternalServerError(c, "Failed to update consultation")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
