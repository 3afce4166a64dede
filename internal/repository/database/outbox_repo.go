package database

import (
	"context"
	"encoding/json"
	"time"

	"yatube/internal/model"

	"gorm.io/gorm"
)

const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
	EventComment  = "comment"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// 插入outbox事件表，必须在业务事务 tx 内调用
func insertOutbox(tx *gorm.DB, event string, actorID, targetID uint64, fields map[string]any) error {
	body := map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"actor":      actorID,
		"target":     targetID,
	}
	for k, v := range fields {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return tx.Create(&model.SocialOutbox{
		EventType: event,
		ActorID:   actorID,
		TargetID:  targetID,
		Payload:   string(payload),
		Status:    model.OutboxPending,
	}).Error
}

// ListPending 待投递和可重试的事件，按写入顺序
func (r *OutboxRepository) ListPending(ctx context.Context, batchSize, maxRetry int) ([]model.SocialOutbox, error) {
	var list []model.SocialOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkFailed outbox记录消息失败重试
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// MarkSent outbox成功记录消息更新
func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.SocialOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
