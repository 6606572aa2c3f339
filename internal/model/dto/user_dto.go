package dto

// ========== User 相关 DTO ==========

// UserProfileData 用户资料数据
type UserProfileData struct {
	PublicID     string `json:"public_id"`
	Nickname     string `json:"nickname"`
	IsAdmin      bool   `json:"is_admin"`
	IsPremium    bool   `json:"is_premium"`
	RegisteredAt string `json:"registered_at,omitempty"`
}

// CompleteExerciseData 练习完成响应
type CompleteExerciseData struct {
	ExerciseID     string `json:"exercise_id"`
	CompletedCount int64  `json:"completed_count"`
}
