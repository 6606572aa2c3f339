package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"MindPeak/internal/cache"
	"MindPeak/internal/model"
	"MindPeak/internal/repository"
	"MindPeak/pkg/logger"
	"MindPeak/storage/mq"
)

// BadgePathFinisher 走完引导路径授予的徽章
const BadgePathFinisher = "path_finisher"

// StartPathCompletedConsumer 消费路径完成事件，授予 path_finisher 徽章
//
// AwardBadge 本身幂等，redis 标记只是挡掉重复投递的数据库往返
func StartPathCompletedConsumer(ctx context.Context) error {
	stats := repository.StatsRepo{}

	handler := func(body []byte) error {
		var msg model.PathCompletedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal path completed message: %w", err)
		}

		fresh, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败不阻塞：徽章授予是幂等的
		} else if !fresh {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("user_id", msg.UserID),
			)
			return nil
		}

		if err := stats.AwardBadge(ctx, msg.UserID, BadgePathFinisher); err != nil {
			if unmarkErr := cache.UnmarkMessageProcessing(ctx, msg.MessageID); unmarkErr != nil {
				logger.Logger.Warn("Failed to unmark message after award failure",
					zap.String("message_id", msg.MessageID),
					zap.Error(unmarkErr),
				)
			}
			return fmt.Errorf("failed to award path finisher badge: %w", err)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		logger.Logger.Info("Awarded path finisher badge",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.Int("total_days", msg.TotalDays),
		)

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "progression.path.completed",
		ConsumerTag:   "path-completed-worker",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartStageCompletedConsumer 消费阶段完成事件，目前只做审计日志
func StartStageCompletedConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.StageCompletedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal stage completed message: %w", err)
		}

		logger.Logger.Info("Funnel stage completed",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("stage", msg.Stage),
			zap.Time("completed_at", msg.CompletedAt),
		)

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         "progression.stage.completed",
		ConsumerTag:   "stage-completed-worker",
		PrefetchCount: 50,
		Handler:       handler,
	})
}

// StartAllConsumers 启动全部消费者，每个消费者一个 goroutine
func StartAllConsumers(ctx context.Context) {
	go func() {
		if err := StartPathCompletedConsumer(ctx); err != nil {
			logger.Logger.Error("Path completed consumer stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := StartStageCompletedConsumer(ctx); err != nil {
			logger.Logger.Error("Stage completed consumer stopped", zap.Error(err))
		}
	}()
}
