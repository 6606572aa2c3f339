package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"MindPeak/internal/model"
	"MindPeak/pkg/logger"
	"MindPeak/pkg/snowflake"
	"MindPeak/storage/mq"
)

const eventsExchange = "progression.events"

// PublishPathCompleted 发布引导路径完成事件
func PublishPathCompleted(msg model.PathCompletedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("user_id", msg.UserID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("path_completed_%d", id)
	}
	if msg.CompletedAt.IsZero() {
		msg.CompletedAt = time.Now()
	}

	if err := mq.PublishMessage(eventsExchange, "path.completed", msg); err != nil {
		logger.Logger.Error("Failed to publish path completed message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published path completed message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_id", msg.UserID),
		zap.Int("total_days", msg.TotalDays),
	)

	return nil
}

// PublishStageCompleted 发布漏斗阶段完成事件
func PublishStageCompleted(msg model.StageCompletedMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("user_id", msg.UserID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("stage_completed_%d", id)
	}
	if msg.CompletedAt.IsZero() {
		msg.CompletedAt = time.Now()
	}

	if err := mq.PublishMessage(eventsExchange, "stage.completed", msg); err != nil {
		logger.Logger.Error("Failed to publish stage completed message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("stage", msg.Stage),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published stage completed message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("user_id", msg.UserID),
		zap.String("stage", msg.Stage),
	)

	return nil
}
