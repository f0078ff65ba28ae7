// Package notify implements the notification dispatcher. A notification is
// persisted for later retrieval by the user's notification feed, then
// announced on Redis so connected clients can pick it up over SSE.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// eventChannel is the Redis pub/sub channel the gateway's SSE forwarder
// subscribes to.
const eventChannel = "EVENT_NOTIFICATION"

// Dispatcher persists notifications and publishes change events.
type Dispatcher struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// New returns a configured Dispatcher.
func New(pool *pgxpool.Pool, rdb *redis.Client) *Dispatcher {
	return &Dispatcher{pool: pool, rdb: rdb}
}

// CreateNotification stores an unread notification for userID and publishes
// an EVENT_NOTIFICATION payload. The Redis publish is non-fatal: the stored
// row is the durable fact, live delivery is opportunistic.
// Implements workflow.Notifier.
func (d *Dispatcher) CreateNotification(ctx context.Context, userID, message, linkURL string) error {
	var id string
	err := d.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, message, link_url, is_read, created_at)
		 VALUES ($1, $2, $3, false, NOW())
		 RETURNING id`,
		userID, message, linkURL,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("createNotification: %w", err)
	}

	event, _ := json.Marshal(map[string]string{
		"type":           eventChannel,
		"notificationId": id,
		"userId":         userID,
		"linkUrl":        linkURL,
	})
	if err := d.rdb.Publish(ctx, eventChannel, event).Err(); err != nil {
		slog.Warn("publish EVENT_NOTIFICATION failed", "userId", userID, "err", err)
	}

	return nil
}
