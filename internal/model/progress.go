package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProgressRecord 远端权威的进阶标志记录，每个用户一行
//
// 四个标志都是三态：true / false / NULL（从未写过）。
// 远端对跨设备是权威的；设备侧缓存只能被它刷新，方向见 cache.FlagStore
type ProgressRecord struct {
	BaseModel
	UserID                 int64 `gorm:"uniqueIndex;not null" json:"user_id"` // users.public_id
	OnboardingCompleted    *bool `json:"onboarding_completed"`
	QuestionnaireCompleted *bool `json:"questionnaire_completed"`
	WelcomeShown           *bool `json:"welcome_shown"`
	GuidedPathCompleted    *bool `json:"guided_path_completed"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// ProgressPatch 部分更新，nil 字段不动（merge 语义）
type ProgressPatch struct {
	OnboardingCompleted    *bool
	QuestionnaireCompleted *bool
	WelcomeShown           *bool
	GuidedPathCompleted    *bool
}

// DaySet 已完成天数集合，JSONB 存储
type DaySet []int

func (d DaySet) Value() (driver.Value, error) {
	if d == nil {
		d = DaySet{}
	}
	return json.Marshal(d)
}

func (d *DaySet) Scan(value interface{}) error {
	if value == nil {
		*d = DaySet{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported DaySet column type: %T", value)
	}

	return json.Unmarshal(data, d)
}

// Contains 判断某天是否已完成
func (d DaySet) Contains(day int) bool {
	for _, v := range d {
		if v == day {
			return true
		}
	}
	return false
}

// Max 返回已完成的最大天数，空集合返回 0
func (d DaySet) Max() int {
	max := 0
	for _, v := range d {
		if v > max {
			max = v
		}
	}
	return max
}

// PathProgress 多日引导路径的进度，首次进入路径时创建，永不删除
type PathProgress struct {
	BaseModel
	UserID        int64     `gorm:"uniqueIndex;not null" json:"user_id"` // users.public_id
	CurrentDay    int       `gorm:"not null;default:1" json:"current_day"`
	CompletedDays DaySet    `gorm:"type:jsonb;default:'[]'" json:"completed_days"`
	StartedAt     time.Time `gorm:"not null;default:now()" json:"started_at"`
	LastUpdated   time.Time `gorm:"not null;default:now()" json:"last_updated"`
}

func (PathProgress) TableName() string {
	return "path_progresses"
}

// Badge 用户已获得的徽章
type Badge struct {
	BaseModel
	UserID    int64     `gorm:"index:idx_badges_user;not null" json:"user_id"`
	Code      string    `gorm:"type:varchar(64);not null;index:idx_badges_user" json:"code"`
	AwardedAt time.Time `gorm:"not null;default:now()" json:"awarded_at"`
}

func (Badge) TableName() string {
	return "badges"
}

// ExerciseCompletion 练习完成记录，只追加
type ExerciseCompletion struct {
	BaseModel
	UserID      int64     `gorm:"index:idx_exercise_completions_user;not null" json:"user_id"`
	ExerciseID  string    `gorm:"type:varchar(64);not null" json:"exercise_id"`
	CompletedAt time.Time `gorm:"not null;default:now()" json:"completed_at"`
}

func (ExerciseCompletion) TableName() string {
	return "exercise_completions"
}
