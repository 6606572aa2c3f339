package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"MindPeak/internal/model/dto"
	"MindPeak/internal/service"
	"MindPeak/pkg/response"
)

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// DevLogin 开发环境签发 token，生产环境返回 403
// POST /v1/auth/dev-login
func DevLogin(ctx context.Context, c *app.RequestContext) {
	var req dto.DevLoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Auth().DevLogin(ctx, req.UserID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
