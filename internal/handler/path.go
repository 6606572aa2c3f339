package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"MindPeak/internal/middleware"
	"MindPeak/internal/model/dto"
	"MindPeak/internal/progression"
	"MindPeak/internal/service"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/response"
)

// GetPathState 读取引导路径状态，首次访问即开始路径
// GET /v1/path
func GetPathState(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	result, err := service.Path().State(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// AdvanceDay 前进一天
// POST /v1/path/advance
func AdvanceDay(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	result, err := service.Path().Advance(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// RetreatDay 后退一天
// POST /v1/path/retreat
func RetreatDay(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	result, err := service.Path().Retreat(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// JumpToDay 跳转到 frontier 以内的任意一天
// POST /v1/path/jump
func JumpToDay(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.JumpToDayRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Path().JumpTo(ctx, userID, req.Day)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CompleteDay 标记某天完成；最后一天完成时附带庆祝页跳转指令
// POST /v1/path/complete-day
func CompleteDay(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	var req dto.CompleteDayRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, pathCompleted, err := service.Path().CompleteDay(ctx, userID, req.Day)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	if pathCompleted {
		response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
			"redirect": dto.RedirectInfo{
				Target:  progression.RouteCelebration,
				Replace: true,
			},
		})
		return
	}

	response.Success(ctx, c, result)
}
