package dto

// ========== 进阶闸门相关 DTO ==========

// GateDecisionData 闸门评估结果
// Status 为 allowed 时 Redirect 为空；为 redirect 时客户端必须以 replace
// 语义跳转，被拦截的路由不能留在历史栈里
type GateDecisionData struct {
	Status       string        `json:"status"` // allowed, redirect, bypassed
	Stage        string        `json:"stage,omitempty"`
	Redirect     *RedirectInfo `json:"redirect,omitempty"`
	EvaluationID string        `json:"evaluation_id"`
}

// RedirectInfo 跳转指令
type RedirectInfo struct {
	Target  string `json:"target"`
	Replace bool   `json:"replace"`
}

// EvaluateGateRequest 闸门评估请求
type EvaluateGateRequest struct {
	Route string `json:"route" query:"route"`
}

// CompleteStepData 阶段完成响应
type CompleteStepData struct {
	Step      string `json:"step"`
	Completed bool   `json:"completed"`
}

// ProgressionStatusData 当前用户的进阶状态汇总
type ProgressionStatusData struct {
	BadgeCount             int64  `json:"badge_count"`
	CompletedExerciseCount int64  `json:"completed_exercise_count"`
	IsPremium              bool   `json:"is_premium"`
	IsExisting             bool   `json:"is_existing"`
	OnboardingCompleted    bool   `json:"onboarding_completed"`
	QuestionnaireCompleted bool   `json:"questionnaire_completed"`
	WelcomeShown           bool   `json:"welcome_shown"`
	GuidedPathCompleted    bool   `json:"guided_path_completed"`
	RegisteredAt           string `json:"registered_at,omitempty"`
}
