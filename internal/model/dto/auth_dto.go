package dto

// ========== 认证相关 DTO ==========

// RefreshTokenRequest 刷新 token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPairData token 对
type TokenPairData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// DevLoginRequest 开发环境下直接签发 token，生产环境禁用
type DevLoginRequest struct {
	UserID int64 `json:"user_id"`
}
