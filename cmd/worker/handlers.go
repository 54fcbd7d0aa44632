package main

import (
	"github.com/hibiken/asynq"

	coinJob "rez-backend/internal/domains/coin/job"
	discountJob "rez-backend/internal/domains/discount/job"
	"rez-backend/internal/shared"
	"rez-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	expireCoins                *coinJob.ExpireCoinsHandler
	deactivateExpiredDiscounts *discountJob.DeactivateExpiredHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		expireCoins:                coinJob.NewExpireCoinsHandler(c.CoinService),
		deactivateExpiredDiscounts: discountJob.NewDeactivateExpiredHandler(c.DiscountService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeExpireCoins, h.expireCoins.ProcessTask)
	mux.HandleFunc(shared.TypeDeactivateExpiredDiscount, h.deactivateExpiredDiscounts.ProcessTask)
}
