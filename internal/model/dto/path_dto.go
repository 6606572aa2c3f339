package dto

import "time"

// ========== 引导路径相关 DTO ==========

// PathStateData 路径当前状态
type PathStateData struct {
	CurrentDay    int       `json:"current_day"`
	TotalDays     int       `json:"total_days"`
	CompletedDays []int     `json:"completed_days"`
	PathCompleted bool      `json:"path_completed"`
	StartedAt     time.Time `json:"started_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

// JumpToDayRequest 跳转到指定天
type JumpToDayRequest struct {
	Day int `json:"day"`
}

// CompleteDayRequest 标记某天完成
type CompleteDayRequest struct {
	Day int `json:"day"`
}
