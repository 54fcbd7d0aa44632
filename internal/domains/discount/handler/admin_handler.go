package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/discount/model"
	"rez-backend/internal/domains/discount/service"
	"rez-backend/internal/shared/response"
)

// AdminHandler xử lý các API quản trị discount
type AdminHandler struct {
	service service.ServiceInterface
}

// NewAdminHandler tạo handler instance
func NewAdminHandler(discountService service.ServiceInterface) *AdminHandler {
	return &AdminHandler{service: discountService}
}

// Create godoc
// POST /api/v1/admin/discounts
func (h *AdminHandler) Create(c *gin.Context) {
	var req model.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	discount, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateCode) {
			response.Conflict(c, "Discount code already exists")
			return
		}
		response.InternalServerError(c, "Failed to create discount")
		return
	}

	response.Success(c, http.StatusCreated, discount)
}

// Update godoc
// PUT /api/v1/admin/discounts/:id
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	var req model.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	discount, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDiscountNotFound):
			response.NotFound(c, "Discount not found")
		case errors.Is(err, model.ErrDuplicateCode):
			response.Conflict(c, "Discount code already exists")
		default:
			response.InternalServerError(c, "Failed to update discount")
		}
		return
	}

	response.Success(c, http.StatusOK, discount)
}

// Activate godoc
// POST /api/v1/admin/discounts/:id/activate
func (h *AdminHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// POST /api/v1/admin/discounts/:id/deactivate
// Discount không bao giờ bị xóa - chỉ deactivate
func (h *AdminHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *AdminHandler) setActive(c *gin.Context, isActive bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, isActive); err != nil {
		if errors.Is(err, model.ErrDiscountNotFound) {
			response.NotFound(c, "Discount not found")
			return
		}
		response.InternalServerError(c, "Failed to update discount status")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": isActive})
}

// GetAnalytics godoc
// GET /api/v1/admin/discounts/:id/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	analytics, err := h.service.GetAnalytics(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDiscountNotFound) {
			response.NotFound(c, "Discount not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch discount analytics")
		return
	}

	response.Success(c, http.StatusOK, analytics)
}
