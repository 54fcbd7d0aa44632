package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rez-backend/internal/domains/coin/model"
	"rez-backend/internal/domains/coin/service"
	"rez-backend/internal/shared/response"
	"rez-backend/internal/shared/utils"
)

// CoinHandler xử lý promo coin APIs (tất cả required auth)
type CoinHandler struct {
	service service.ServiceInterface
}

func NewCoinHandler(coinService service.ServiceInterface) *CoinHandler {
	return &CoinHandler{service: coinService}
}

// GetBalance godoc
// GET /api/v1/coins/balance
func (h *CoinHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch coin balance")
		return
	}

	response.Success(c, http.StatusOK, balance)
}

// GetHistory godoc
// GET /api/v1/coins/history
func (h *CoinHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := utils.ParsePagination(c)

	txns, total, err := h.service.GetHistory(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.InternalServerError(c, "Failed to fetch coin history")
		return
	}

	response.Paginated(c, http.StatusOK, txns, page, limit, total)
}

// Redeem godoc
// POST /api/v1/coins/redeem
func (h *CoinHandler) Redeem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req model.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	req.UserID = userID

	txn, err := h.service.Redeem(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientBalance) {
			response.BadRequest(c, "Insufficient coin balance")
			return
		}
		response.InternalServerError(c, "Failed to redeem coins")
		return
	}

	response.Success(c, http.StatusOK, txn)
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
