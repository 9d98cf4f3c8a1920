// Package router 提供 HTTP 路由配置
package router

import (
	"rhino-modeling-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	modelingHandler *handler.ModelingSessionHandler,
) {
	// 建模会话
	sessions := v1.Group("/modeling-sessions")
	{
		sessions.POST("", modelingHandler.CreateSession)
		sessions.GET("", modelingHandler.ListSessions)
		sessions.GET("/:sid", modelingHandler.GetSession)
		sessions.GET("/:sid/turns", modelingHandler.ListTurns)

		// 参数：POST 建议，PATCH 调整
		sessions.POST("/:sid/parameters", modelingHandler.SuggestParameters)
		sessions.PATCH("/:sid/parameters", modelingHandler.TuneParameters)

		// 生成与反馈修订
		sessions.POST("/:sid/generate", modelingHandler.Generate)
		sessions.POST("/:sid/feedback", modelingHandler.ApplyFeedback)
	}
}
