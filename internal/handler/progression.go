package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"MindPeak/internal/middleware"
	"MindPeak/internal/model/dto"
	"MindPeak/internal/progression"
	"MindPeak/internal/repository"
	"MindPeak/internal/service"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/response"
)

// identity 从请求上下文取身份；带用户行查询以便拿到 IsAdmin
func identity(ctx context.Context, c *app.RequestContext) (progression.Identity, error) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		return progression.Identity{}, pkgerrors.Unauthorized
	}

	user, err := repository.UserRepo{}.GetByPublicID(ctx, userID)
	if err != nil {
		return progression.Identity{}, err
	}

	return progression.Identity{UserID: userID, IsAdmin: user.IsAdmin}, nil
}

// EvaluateGate 对一次路由进入做闸门评估
// GET /v1/progression/gate?route=/home
func EvaluateGate(ctx context.Context, c *app.RequestContext) {
	ident, err := identity(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	var req dto.EvaluateGateRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Progression().Evaluate(ctx, ident, req.Route)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CompleteStep 标记漏斗阶段完成
// POST /v1/progression/steps/:step/complete
func CompleteStep(ctx context.Context, c *app.RequestContext) {
	ident, err := identity(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	step := c.Param("step")

	result, err := service.Progression().CompleteStep(ctx, ident, step)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetProgressionStatus 汇总当前用户的进阶状态
// GET /v1/progression/status
func GetProgressionStatus(ctx context.Context, c *app.RequestContext) {
	ident, err := identity(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	result, err := service.Progression().Status(ctx, ident)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SignOut 登出，清空设备侧标志
// POST /v1/progression/sign-out
func SignOut(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	if err := service.Progression().SignOut(ctx, userID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// ResetProgression 管理员重置指定用户的进阶记录
// POST /v1/admin/progression/:user_id/reset
func ResetProgression(ctx context.Context, c *app.RequestContext) {
	ident, err := identity(ctx, c)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidUserID)
		return
	}

	if err := service.Progression().Reset(ctx, ident, targetID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
