package service

import (
	"context"
	"log/slog"
	"time"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer 定时把 outbox 表中的事件投递出去
type OutboxRelayer struct {
	repo      *database.OutboxRepository
	batchSize int
	maxRetry  int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &database.OutboxRepository{DB: db},
		batchSize: 200,
		maxRetry:  5,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run 阻塞直到 ctx 取消
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		slog.ErrorContext(ctx, "outbox query", "error", err)
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			pkg.OutboxDeliveries.WithLabelValues(ob.EventType, "failed").Inc()
			slog.WarnContext(ctx, "outbox send", "id", ob.ID, "event", ob.EventType, "retry", ob.Retry, "error", err)
			if err = r.repo.MarkFailed(ctx, ob.ID); err != nil {
				slog.ErrorContext(ctx, "outbox mark failed", "id", ob.ID, "error", err)
			}
			continue
		}
		pkg.OutboxDeliveries.WithLabelValues(ob.EventType, "sent").Inc()
		if err = r.repo.MarkSent(ctx, ob.ID); err != nil {
			slog.ErrorContext(ctx, "outbox mark sent", "id", ob.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// LogSender 未配置 Kafka 和 SMTP 时的默认 sender
func LogSender(ctx context.Context, ob *model.SocialOutbox) error {
	slog.InfoContext(ctx, "outbox event",
		"id", ob.ID, "event", ob.EventType, "actor", ob.ActorID, "target", ob.TargetID, "payload", ob.Payload)
	return nil
}

// KafkaSender 以 actor 为 key 写入 Kafka
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Publish(ctx, ob.ActorID, ob.EventType, []byte(ob.Payload))
	}
}

// ChainSenders 依次调用，任一失败即整体失败
func ChainSenders(senders ...Sender) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		for _, send := range senders {
			if err := send(ctx, ob); err != nil {
				return err
			}
		}
		return nil
	}
}
