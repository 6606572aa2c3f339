package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"MindPeak/internal/handler"
	"MindPeak/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.GeneralRateLimitMiddleware())
	{
		auth.POST("/token/refresh", handler.RefreshToken)
		auth.POST("/dev-login", handler.DevLogin)
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/me", handler.GetUserProfile)
	}

	// 进阶闸门路由：评估、阶段完成、状态、登出
	prog := v1.Group("/progression")
	prog.Use(middleware.AuthMiddleware())
	{
		prog.GET("/gate", middleware.GateRateLimitMiddleware(), handler.EvaluateGate)
		prog.POST("/steps/:step/complete", handler.CompleteStep)
		prog.GET("/status", handler.GetProgressionStatus)
		prog.POST("/sign-out", handler.SignOut)
	}

	// 引导路径路由：路径页自身豁免 guided_path 检查，闸门按 /path 查表
	path := v1.Group("/path")
	path.Use(middleware.AuthMiddleware())
	path.Use(middleware.ProgressionGateMiddleware("/path"))
	{
		path.GET("", handler.GetPathState)
		path.POST("/advance", handler.AdvanceDay)
		path.POST("/retreat", handler.RetreatDay)
		path.POST("/jump", handler.JumpToDay)
		path.POST("/complete-day", handler.CompleteDay)
	}

	// 练习内容路由：属于默认落地路由，受完整闸门保护
	exercises := v1.Group("/exercises")
	exercises.Use(middleware.AuthMiddleware())
	exercises.Use(middleware.ProgressionGateMiddleware("/exercises"))
	{
		exercises.POST("/:exercise_id/complete", handler.CompleteExercise)
	}

	// 管理路由
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.POST("/progression/:user_id/reset", handler.ResetProgression)
	}
}
