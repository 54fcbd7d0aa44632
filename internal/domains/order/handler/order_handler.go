package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	discountModel "rez-backend/internal/domains/discount/model"
	"rez-backend/internal/domains/order/model"
	"rez-backend/internal/domains/order/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// OrderHandler xử lý order APIs
type OrderHandler struct {
	service service.ServiceInterface
}

func NewOrderHandler(orderService service.ServiceInterface) *OrderHandler {
	return &OrderHandler{service: orderService}
}

// Create godoc
// POST /api/v1/orders (required auth)
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.UserID = userID

	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		if ie, ok := discountModel.AsIneligible(err); ok {
			response.BadRequest(c, ie.Reason)
			return
		}
		if errors.Is(err, discountModel.ErrDiscountNotFound) {
			response.NotFound(c, "Discount not found")
			return
		}
		if errors.Is(err, discountModel.ErrUsageLimitRace) {
			response.BadRequest(c, discountModel.ReasonUsageLimitReached)
			return
		}
		if errors.Is(err, discountModel.ErrZeroAmount) {
			response.BadRequest(c, "Discount amount is zero for this order value")
			return
		}
		response.InternalServerError(c, "Failed to create order")
		return
	}

	response.Success(c, http.StatusCreated, order)
}

// GetByID godoc
// GET /api/v1/orders/:id (required auth, chỉ chủ đơn xem được)
func (h *OrderHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			response.NotFound(c, "Order not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch order")
		return
	}

	if order.UserID != userID {
		response.Forbidden(c, "You do not have access to this order")
		return
	}

	response.Success(c, http.StatusOK, order)
}

// ListMine godoc
// GET /api/v1/orders (required auth)
func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := utils.ParsePagination(c)

	orders, total, err := h.service.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch orders")
		return
	}

	response.Paginated(c, http.StatusOK, orders, page, limit, total)
}

// UpdateStatus godoc
// PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
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

	err = h.service.UpdateStatus(c.Request.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrOrderNotFound):
			response.NotFound(c, "Order not found")
		case errors.Is(err, model.ErrInvalidTransition):
			response.BadRequest(c, "Invalid status transition")
		default:
			response.InternalServerError(c, "Failed to update order status")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
