package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/accounts-service/internal/events"
	"github.com/spec-kit/accounts-service/internal/persistence"
)

const activityHistoryLimit = 100

// ActivityService records account activity from domain events into Redis:
// a last-login timestamp per account plus a capped per-account audit trail.
type ActivityService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger) *ActivityService {
	return &ActivityService{dispatcher: dispatcher, redis: redis, logger: logger}
}

// RegisterHandlers subscribes to account events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleLoggedIn)
	a.dispatcher.Subscribe(events.EventUserRegistered, a.recordActivity)
	a.dispatcher.Subscribe(events.EventUserActivated, a.recordActivity)
	a.dispatcher.Subscribe(events.EventUserDeactivated, a.recordActivity)
	a.dispatcher.Subscribe(events.EventPasswordChanged, a.recordActivity)
}

func (a *ActivityService) handleLoggedIn(ctx context.Context, event events.Event) error {
	a.logger.Info("user logged in", zap.Int64("user_id", event.UserID))
	if a.redis == nil || a.redis.Client == nil {
		return nil
	}

	key := lastLoginKey(event.UserID)
	if err := a.redis.Client.Set(ctx, key, event.Timestamp.Format(time.RFC3339), 0).Err(); err != nil {
		a.logger.Debug("record last login", zap.Error(err))
	}
	return a.recordActivity(ctx, event)
}

func (a *ActivityService) recordActivity(ctx context.Context, event events.Event) error {
	a.logger.Info("account event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.Int64("user_id", event.UserID))

	if a.redis == nil || a.redis.Client == nil {
		return nil
	}

	entry, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := activityKey(event.UserID)
	pipe := a.redis.Client.Pipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, activityHistoryLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		a.logger.Debug("record activity", zap.Error(err))
	}
	return nil
}

// LastLogin returns the most recent login time recorded for the account.
func (a *ActivityService) LastLogin(ctx context.Context, userID int64) (time.Time, error) {
	if a.redis == nil || a.redis.Client == nil {
		return time.Time{}, fmt.Errorf("activity store not configured")
	}
	val, err := a.redis.Client.Get(ctx, lastLoginKey(userID)).Result()
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}

func lastLoginKey(userID int64) string {
	return fmt.Sprintf("accounts:last_login:%d", userID)
}

func activityKey(userID int64) string {
	return fmt.Sprintf("accounts:activity:%d", userID)
}
