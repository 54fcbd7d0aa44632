package shared

// Task types cho asynq worker
const (
	TypeExpireCoins               = "coin:expire"
	TypeDeactivateExpiredDiscount = "discount:deactivate_expired"
)

// Queue names
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)
