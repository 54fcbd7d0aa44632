package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/outlet/model"
	"rez-backend/internal/domains/outlet/service"
	"rez-backend/internal/shared/response"
)

// OutletHandler xử lý outlet APIs
type OutletHandler struct {
	service service.ServiceInterface
}

func NewOutletHandler(outletService service.ServiceInterface) *OutletHandler {
	return &OutletHandler{service: outletService}
}

// FindNearby godoc
// GET /api/v1/outlets/nearby?lat=&lng=&radius=
func (h *OutletHandler) FindNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		response.BadRequest(c, "Valid lat is required")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		response.BadRequest(c, "Valid lng is required")
		return
	}

	// radius (km) không bắt buộc, service tự áp default
	radius, _ := strconv.ParseFloat(c.DefaultQuery("radius", "0"), 64)

	outlets, err := h.service.FindNearby(c.Request.Context(), lat, lng, radius)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch nearby outlets")
		return
	}

	response.Success(c, http.StatusOK, outlets)
}

// GetByID godoc
// GET /api/v1/outlets/:id
func (h *OutletHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid outlet ID")
		return
	}

	outlet, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrOutletNotFound) {
			response.NotFound(c, "Outlet not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch outlet")
		return
	}

	response.Success(c, http.StatusOK, outlet)
}

// ListByStore godoc
// GET /api/v1/stores/:id/outlets
func (h *OutletHandler) ListByStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	outlets, err := h.service.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch outlets")
		return
	}

	response.Success(c, http.StatusOK, outlets)
}

// Create godoc
// POST /api/v1/admin/outlets
func (h *OutletHandler) Create(c *gin.Context) {
	var req model.CreateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	outlet, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, "Failed to create outlet")
		return
	}

	response.Success(c, http.StatusCreated, outlet)
}

// Update godoc
// PUT /api/v1/admin/outlets/:id
func (h *OutletHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid outlet ID")
		return
	}

	var req model.CreateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	outlet, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrOutletNotFound) {
			response.NotFound(c, "Outlet not found")
			return
		}
		response.InternalServerError(c, "Failed to update outlet")
		return
	}

	response.Success(c, http.StatusOK, outlet)
}
