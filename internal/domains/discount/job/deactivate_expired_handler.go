package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	discountService "rez-backend/internal/domains/discount/service"
)

// DeactivateExpiredHandler tắt các discount đã qua valid_until.
// Scheduler enqueue định kỳ; discount không bao giờ bị xóa, chỉ deactivate.
type DeactivateExpiredHandler struct {
	discountService discountService.ServiceInterface
}

func NewDeactivateExpiredHandler(discountService discountService.ServiceInterface) *DeactivateExpiredHandler {
	return &DeactivateExpiredHandler{
		discountService: discountService,
	}
}

// ProcessTask quét và deactivate discount hết hạn
func (h *DeactivateExpiredHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	count, err := h.discountService.DeactivateExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to deactivate expired discounts")
		return err
	}

	if count > 0 {
		log.Info().
			Int64("count", count).
			Msg("Deactivated expired discounts")
	}

	return nil
}
