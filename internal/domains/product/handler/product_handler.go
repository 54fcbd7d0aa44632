package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/product/model"
	"rez-backend/internal/domains/product/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// ProductHandler xử lý product APIs
type ProductHandler struct {
	service service.ServiceInterface
}

func NewProductHandler(productService service.ServiceInterface) *ProductHandler {
	return &ProductHandler{service: productService}
}

// List godoc
// GET /api/v1/products?storeId=&categoryId=&search=&page=&limit=
func (h *ProductHandler) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	filter := &model.ListProductsFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	if v := c.Query("storeId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Invalid store ID")
			return
		}
		filter.StoreID = &id
	}
	if v := c.Query("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Invalid category ID")
			return
		}
		filter.CategoryID = &id
	}

	products, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch products")
		return
	}

	response.Paginated(c, http.StatusOK, products, page, limit, total)
}

// GetByID godoc
// GET /api/v1/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			response.NotFound(c, "Product not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch product")
		return
	}

	response.Success(c, http.StatusOK, product)
}

// Create godoc
// POST /api/v1/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, "Failed to create product")
		return
	}

	response.Success(c, http.StatusCreated, product)
}

// Update godoc
// PUT /api/v1/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			response.NotFound(c, "Product not found")
			return
		}
		response.InternalServerError(c, "Failed to update product")
		return
	}

	response.Success(c, http.StatusOK, product)
}
