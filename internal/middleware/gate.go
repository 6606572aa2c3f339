package middleware

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"

	"MindPeak/internal/progression"
	"MindPeak/internal/service"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/response"
)

// ProgressionGateMiddleware 内容接口的进阶闸门
//
// route 是该接口组对应的客户端路由，闸门按它查豁免表和落地集合。
// 未过闸的请求拿到 403 和跳转指令，客户端照 target/replace 执行即可
func ProgressionGateMiddleware(route string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		userID, ok := GetUserIDInt64(ctx, c)
		if !ok {
			response.Error(ctx, c, pkgerrors.Unauthorized)
			c.Abort()
			return
		}

		decision, err := service.Progression().Gate().Evaluate(ctx, progression.Identity{UserID: userID}, route)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrStaleEvaluation) {
				// 身份在评估期间变了，让客户端带新身份重试
				response.Error(ctx, c, pkgerrors.Unauthorized)
				c.Abort()
				return
			}
			response.Error(ctx, c, err)
			c.Abort()
			return
		}

		if decision.State == progression.StateRedirecting {
			response.ErrorWithDetails(ctx, c, pkgerrors.ProgressionRequired, map[string]interface{}{
				"stage":   decision.Stage.String(),
				"target":  decision.Target,
				"replace": decision.Replace,
			})
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}
