package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rez-backend/internal/domains/discount/model"
	"rez-backend/internal/domains/discount/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// PublicHandler xử lý các API user-facing cho discount
type PublicHandler struct {
	service service.ServiceInterface
}

// NewPublicHandler tạo handler instance
func NewPublicHandler(discountService service.ServiceInterface) *PublicHandler {
	return &PublicHandler{service: discountService}
}

// List godoc
// GET /api/v1/discounts
// Query: applicableOn, type, minValue, maxValue, paymentMethod, cardType, storeId, page, limit
func (h *PublicHandler) List(c *gin.Context) {
	page, limit := utils.ParsePagination(c)

	filter := &model.ListDiscountsFilter{
		ApplicableOn:  c.Query("applicableOn"),
		Type:          c.Query("type"),
		PaymentMethod: c.Query("paymentMethod"),
		CardType:      c.Query("cardType"),
		Page:          page,
		Limit:         limit,
	}

	if v := c.Query("minValue"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinValue = &f
		}
	}
	if v := c.Query("maxValue"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxValue = &f
		}
	}
	if v := c.Query("storeId"); v != "" {
		storeID, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Invalid store ID")
			return
		}
		filter.StoreID = &storeID
	}

	discounts, total, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch discounts")
		return
	}

	response.Paginated(c, http.StatusOK, discounts, filter.Page, filter.Limit, total)
}

// GetByID godoc
// GET /api/v1/discounts/:id
func (h *PublicHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	discount, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDiscountNotFound) {
			response.NotFound(c, "Discount not found")
			return
		}
		response.InternalServerError(c, "Failed to fetch discount")
		return
	}

	response.Success(c, http.StatusOK, discount)
}

// ListBillPaymentOffers godoc
// GET /api/v1/discounts/bill-payment?orderValue=1000
func (h *PublicHandler) ListBillPaymentOffers(c *gin.Context) {
	orderValue := decimal.Zero
	if v := c.Query("orderValue"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil || parsed.IsNegative() {
			response.BadRequest(c, "Invalid order value")
			return
		}
		orderValue = parsed
	}

	offers, err := h.service.ListBillPaymentOffers(c.Request.Context(), orderValue)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch bill payment offers")
		return
	}

	response.Success(c, http.StatusOK, offers)
}

// ListProductOffers godoc
// GET /api/v1/discounts/product/:productId
// Optional auth: khi có user, lọc bỏ offer đã hết per-user limit
func (h *PublicHandler) ListProductOffers(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	userID := optionalUserID(c)

	offers, err := h.service.ListProductOffers(c.Request.Context(), productID, userID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch product offers")
		return
	}

	response.Success(c, http.StatusOK, offers)
}

// Validate godoc
// POST /api/v1/discounts/validate
// Optional auth: anonymous preview chỉ mang tính advisory
// (per-user limit không check được, enforcement ở /apply)
func (h *PublicHandler) Validate(c *gin.Context) {
	var req model.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req.UserID = optionalUserID(c)

	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrDiscountNotFound) {
			response.NotFound(c, "Discount not found")
			return
		}
		response.InternalServerError(c, "Failed to validate discount")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Apply godoc
// POST /api/v1/discounts/apply
// Required auth: flow ghi usage, per-user limit enforce tại đây
func (h *PublicHandler) Apply(c *gin.Context) {
	userID, ok := requiredUserID(c)
	if !ok {
		return
	}

	var req model.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.UserID = userID

	result, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		h.mapApplyError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetMyHistory godoc
// GET /api/v1/discounts/my-history
func (h *PublicHandler) GetMyHistory(c *gin.Context) {
	userID, ok := requiredUserID(c)
	if !ok {
		return
	}

	page, limit := utils.ParsePagination(c)

	usages, total, err := h.service.GetUserHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch usage history")
		return
	}

	response.Paginated(c, http.StatusOK, usages, page, limit, total)
}

// ValidateCardOffer godoc
// POST /api/v1/discounts/validate-card-offer
func (h *PublicHandler) ValidateCardOffer(c *gin.Context) {
	var req model.ValidateCardOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ValidateCardOffer(c.Request.Context(), req)
	if err != nil {
		response.InternalServerError(c, "Failed to validate card offer")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// mapApplyError map error taxonomy của flow apply về HTTP response.
// ErrUsageLimitRace trả về cùng message với hết usage limit - caller
// không phân biệt và không retry.
func (h *PublicHandler) mapApplyError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrDiscountNotFound) {
		response.NotFound(c, "Discount not found")
		return
	}
	if ie, ok := model.AsIneligible(err); ok {
		response.BadRequest(c, ie.Reason)
		return
	}
	if errors.Is(err, model.ErrZeroAmount) {
		response.BadRequest(c, "Discount amount is zero for this order value")
		return
	}
	if errors.Is(err, model.ErrUsageLimitRace) {
		response.BadRequest(c, model.ReasonUsageLimitReached)
		return
	}
	response.InternalServerError(c, "Failed to apply discount")
}

// optionalUserID đọc userID từ context nếu OptionalAuthMiddleware đã set
func optionalUserID(c *gin.Context) *uuid.UUID {
	v, exists := c.Get("userID")
	if !exists {
		return nil
	}
	userID, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// requiredUserID đọc userID bắt buộc, trả 401 nếu thiếu
func requiredUserID(c *gin.Context) (uuid.UUID, bool) {
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
