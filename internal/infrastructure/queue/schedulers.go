package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"rez-backend/internal/shared"
	"rez-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress string) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterMaintenanceJobs đăng ký tất cả cron jobs
func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerExpireCoinsJob(); err != nil {
		return err
	}

	if err := s.registerDeactivateExpiredDiscountsJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Expire Coin Credits (Hourly)
// ================================================
// Credits có expires_at; quét mỗi giờ để balance của user không
// giữ coin đã quá hạn lâu hơn một giờ.
func (s *Scheduler) registerExpireCoinsJob() error {
	task := asynq.NewTask(shared.TypeExpireCoins, nil)

	_, err := s.scheduler.Register(
		"0 * * * *", // Hourly at minute 0
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register ExpireCoins job", err)
		return err
	}

	logger.Info("✓ Registered ExpireCoins: hourly", map[string]interface{}{})
	return nil
}

// ================================================
// JOB 2: Deactivate Expired Discounts (Every 3 hours)
// ================================================
// Discount quá valid_until vẫn bị evaluator chặn theo thời gian thực;
// job này chỉ flip is_active để list queries khỏi trả về chúng.
// Discounts không bao giờ bị xóa - usage history cần FK sống.
func (s *Scheduler) registerDeactivateExpiredDiscountsJob() error {
	task := asynq.NewTask(shared.TypeDeactivateExpiredDiscount, nil)

	_, err := s.scheduler.Register(
		"0 */3 * * *", // Every 3 hours at minute 0
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register DeactivateExpiredDiscounts job", err)
		return err
	}

	logger.Info("✓ Registered DeactivateExpiredDiscounts: every 3 hours", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
