package model

import "time"

// PathCompletedMessage 引导路径全部完成事件
type PathCompletedMessage struct {
	MessageID   string    `json:"message_id"`
	UserID      int64     `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalDays   int       `json:"total_days"`
}

// StageCompletedMessage 单个漏斗阶段完成事件
type StageCompletedMessage struct {
	MessageID   string    `json:"message_id"`
	UserID      int64     `json:"user_id"`
	Stage       string    `json:"stage"` // intro, questionnaire, welcome
	CompletedAt time.Time `json:"completed_at"`
}
