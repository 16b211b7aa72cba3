// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tradezone_chat_server/internal/handler"
)

// RegisterRoutes 注册所有路由
// 在 http_server.Init() 中调用
// 按模块分别注册各个路由组
func RegisterRoutes(r *gin.Engine, h *handler.Handlers) {
	RegisterAuthRoutes(r, h)      // 认证路由（注册/登录/Token 刷新）
	RegisterChatRoutes(r, h)      // 消息与会话路由
	RegisterWebSocketRoutes(r, h) // WebSocket 路由
}
