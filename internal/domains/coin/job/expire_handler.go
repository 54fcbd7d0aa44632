package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	coinService "rez-backend/internal/domains/coin/service"
)

// ExpireCoinsHandler quét và expire các coin credit quá hạn.
// Scheduler enqueue hàng giờ.
type ExpireCoinsHandler struct {
	coinService coinService.ServiceInterface
}

func NewExpireCoinsHandler(coinService coinService.ServiceInterface) *ExpireCoinsHandler {
	return &ExpireCoinsHandler{
		coinService: coinService,
	}
}

// ProcessTask expire credits và ghi dòng bù trừ vào ledger
func (h *ExpireCoinsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	count, err := h.coinService.ExpireCredits(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to expire coin credits")
		return err
	}

	if count > 0 {
		log.Info().
			Int64("count", count).
			Msg("Expired coin credits")
	}

	return nil
}
