package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/store/model"
	"rez-backend/internal/domains/store/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// StoreHandler xử lý store APIs
type StoreHandler struct {
	service service.ServiceInterface
}

func NewStoreHandler(storeService service.ServiceInterface) *StoreHandler {
	return &StoreHandler{service: storeService}
}

// List godoc
// GET /api/v1/stores?search=&city=&page=&limit=
func (h *StoreHandler) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	filter := &model.ListStoresFilter{
		Search: c.Query("search"),
		City:   c.Query("city"),
		Page:   page,
		Limit:  limit,
	}

	stores, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch stores")
		return
	}

	response.Paginated(c, http.StatusOK, stores, page, limit, total)
}

// GetByID godoc
// GET /api/v1/stores/:id
func (h *StoreHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// Không phải uuid: thử resolve như slug
		store, err := h.service.GetBySlug(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.NotFound(c, "Store not found")
			return
		}
		response.Success(c, http.StatusOK, store)
		return
	}

	store, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrStoreNotFound) {
			response.NotFound(c, "Store not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch store")
		return
	}

	response.Success(c, http.StatusOK, store)
}

// Create godoc
// POST /api/v1/admin/stores
func (h *StoreHandler) Create(c *gin.Context) {
	var req model.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	store, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, "Failed to create store")
		return
	}

	response.Success(c, http.StatusCreated, store)
}

// Update godoc
// PUT /api/v1/admin/stores/:id
func (h *StoreHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid store ID")
		return
	}

	var req model.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	store, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrStoreNotFound) {
			response.NotFound(c, "Store not found")
			return
		}
		response.InternalServerError(c, "Failed to update store")
		return
	}

	response.Success(c, http.StatusOK, store)
}
