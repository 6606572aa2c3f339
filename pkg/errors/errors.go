package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized      = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID     = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	UserNotFound      = Definition{Code: "USER_NOT_FOUND", Message: "User not found"}
	TooManyRequests   = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	AdminOnly         = Definition{Code: "ADMIN_ONLY", Message: "Administrator privileges required"}
	DevLoginDisabled  = Definition{Code: "DEV_LOGIN_DISABLED", Message: "Development login is disabled in this environment"}
)

// 进阶闸门错误。
var (
	ProgressionRequired = Definition{Code: "PROGRESSION_REQUIRED", Message: "A funnel stage must be completed first"}
	StepInvalid         = Definition{Code: "STEP_INVALID", Message: "Unknown progression step"}
	RouteMissing        = Definition{Code: "ROUTE_MISSING", Message: "Requested route is missing"}
)

// 引导路径错误。
var (
	PathNotStarted = Definition{Code: "PATH_NOT_STARTED", Message: "Guided path not started"}
	PathDayInvalid = Definition{Code: "PATH_DAY_INVALID", Message: "Guided path day out of range"}
	PathDayLocked  = Definition{Code: "PATH_DAY_LOCKED", Message: "Guided path day is ahead of the frontier"}
	PathDayPending = Definition{Code: "PATH_DAY_PENDING", Message: "Current day is not completed yet"}
	PathMisconfig  = Definition{Code: "PATH_MISCONFIGURED", Message: "Guided path day count is invalid"}
)

// 练习记录错误。
var (
	ExerciseInvalid = Definition{Code: "EXERCISE_INVALID", Message: "Invalid exercise ID"}
)

// 内部哨兵错误，不直接面向接口。
var (
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrUserIDNotFound               = errors.New("user id not found in claims")
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrStaleEvaluation              = errors.New("evaluation superseded by identity change")
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:        Unauthorized,
	InvalidUserID.Code:       InvalidUserID,
	UserNotFound.Code:        UserNotFound,
	TooManyRequests.Code:     TooManyRequests,
	AdminOnly.Code:           AdminOnly,
	DevLoginDisabled.Code:    DevLoginDisabled,
	ProgressionRequired.Code: ProgressionRequired,
	StepInvalid.Code:         StepInvalid,
	RouteMissing.Code:        RouteMissing,
	PathNotStarted.Code:      PathNotStarted,
	PathDayInvalid.Code:      PathDayInvalid,
	PathDayLocked.Code:       PathDayLocked,
	PathDayPending.Code:      PathDayPending,
	PathMisconfig.Code:       PathMisconfig,
	ExerciseInvalid.Code:     ExerciseInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
