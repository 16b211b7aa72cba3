// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tradezone_chat_server/internal/handler"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由
// 认证在握手处理器内通过 token 查询参数完成，不走 JWT 中间件
func RegisterWebSocketRoutes(r *gin.Engine, h *handler.Handlers) {
	// GET /ws?token=xxx - 升级为 WebSocket 连接
	r.GET("/ws", h.Ws.WsLogin)
}
