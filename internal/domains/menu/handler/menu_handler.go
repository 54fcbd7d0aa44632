package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/menu/model"
	"rez-backend/internal/domains/menu/service"
	"rez-backend/internal/shared/response"
)

// MenuHandler xử lý menu APIs
type MenuHandler struct {
	service service.ServiceInterface
}

func NewMenuHandler(menuService service.ServiceInterface) *MenuHandler {
	return &MenuHandler{service: menuService}
}

// GetByStore godoc
// GET /api/v1/stores/:id/menu
func (h *MenuHandler) GetByStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	sections, err := h.service.GetMenuByStore(c.Request.Context(), storeID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch menu")
		return
	}

	response.Success(c, http.StatusOK, sections)
}

// CreateSection godoc
// POST /api/v1/admin/menu/sections
func (h *MenuHandler) CreateSection(c *gin.Context) {
	var req model.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	section, err := h.service.CreateSection(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, "Failed to create menu section")
		return
	}

	response.Success(c, http.StatusCreated, section)
}

// UpdateSection godoc
// PUT /api/v1/admin/menu/sections/:id
func (h *MenuHandler) UpdateSection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid section ID")
		return
	}

	var req model.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	section, err := h.service.UpdateSection(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrSectionNotFound) {
			response.NotFound(c, "Menu section not found")
			return
		}
		response.InternalServerError(c, "Failed to update menu section")
		return
	}

	response.Success(c, http.StatusOK, section)
}

// DeleteSection godoc
// DELETE /api/v1/admin/menu/sections/:id
func (h *MenuHandler) DeleteSection(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid section ID")
		return
	}

	if err := h.service.DeleteSection(c.Request.Context(), id); err != nil {
		if errors.Is(err, model.ErrSectionNotFound) {
			response.NotFound(c, "Menu section not found")
			return
		}
		response.InternalServerError(c, "Failed to delete menu section")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// CreateItem godoc
// POST /api/v1/admin/menu/items
func (h *MenuHandler) CreateItem(c *gin.Context) {
	var req model.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.service.CreateItem(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrSectionNotFound) {
			response.NotFound(c, "Menu section not found")
			return
		}
		response.InternalServerError(c, "Failed to create menu item")
		return
	}

	response.Success(c, http.StatusCreated, item)
}

// UpdateItem godoc
// PUT /api/v1/admin/menu/items/:id
func (h *MenuHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req model.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			response.NotFound(c, "Menu item not found")
			return
		}
		response.InternalServerError(c, "Failed to update menu item")
		return
	}

	response.Success(c, http.StatusOK, item)
}

// SetItemAvailability godoc
// PATCH /api/v1/admin/menu/items/:id/availability
func (h *MenuHandler) SetItemAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		response.BadRequest(c, "is_available is required")
		return
	}

	if err := h.service.SetItemAvailability(c.Request.Context(), id, *req.IsAvailable); err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			response.NotFound(c, "Menu item not found")
			return
		}
		response.InternalServerError(c, "Failed to update menu item")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_available": *req.IsAvailable})
}

// DeleteItem godoc
// DELETE /api/v1/admin/menu/items/:id
func (h *MenuHandler) DeleteItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, model.ErrItemNotFound) {
			response.NotFound(c, "Menu item not found")
			return
		}
		response.InternalServerError(c, "Failed to delete menu item")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
