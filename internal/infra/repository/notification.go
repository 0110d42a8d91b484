package repository

import (
	"context"
	"time"

	"lablend/internal/infra"
	"lablend/internal/infra/db"
)

// NotificationRepository queues outbound messages for the external
// dispatcher; this service never renders or sends them.
type NotificationRepository struct{}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, q db.DBTX, kind, topic string, payload []byte, runAt time.Time) error {
	query := `
		INSERT INTO notification_jobs (kind, topic, payload, run_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.Exec(ctx, query, kind, topic, payload, runAt)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification job", err)
	}
	return nil
}
