package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"MindPeak/internal/middleware"
	"MindPeak/internal/service"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/response"
)

// GetUserProfile 获取用户资料
// GET /v1/users/me
func GetUserProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	result, err := service.User().GetProfile(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CompleteExercise 上报一次练习完成
// POST /v1/exercises/:exercise_id/complete
func CompleteExercise(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	result, err := service.User().CompleteExercise(ctx, userID, c.Param("exercise_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
