// Package router 提供 HTTP 路由注册
// 本文件定义消息与会话相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tradezone_chat_server/internal/handler"
	"tradezone_chat_server/internal/infrastructure/middleware"
)

// RegisterChatRoutes 注册消息与会话相关路由
// 查询类路由开放访问，写入和按当前用户聚合的路由需要 JWT 认证
func RegisterChatRoutes(r *gin.Engine, h *handler.Handlers) {
	chatGroup := r.Group("/chat")
	{
		// GET /chat/messages - 完整消息日志（存储不可用时降级为空列表）
		chatGroup.GET("/messages", h.Chat.GetAllMessages)
		// GET /chat/messages/user/:userId - 指定用户发送的消息
		chatGroup.GET("/messages/user/:userId", h.Chat.GetMessagesByUser)
		// GET /chat/messages/room/:roomId - 指定房间的消息
		chatGroup.GET("/messages/room/:roomId", h.Chat.GetMessagesByRoom)
		// GET /chat/messages/direct/:userOneId/:userTwoId - 两用户间的私聊消息
		chatGroup.GET("/messages/direct/:userOneId/:userTwoId", h.Chat.GetDirectMessages)
		// GET /chat/online-users - 在线用户列表
		chatGroup.GET("/online-users", h.Chat.GetOnlineUsers)
		// DELETE /chat/message/:id - 删除消息（幂等）
		chatGroup.DELETE("/message/:id", h.Chat.DeleteMessage)
	}

	authedGroup := r.Group("/chat", middleware.JWTAuth())
	{
		// POST /chat/message - 创建消息（仅持久化，不做实时分发）
		authedGroup.POST("/message", h.Chat.CreateMessage)
		// GET /chat/sessions - 当前用户的会话列表
		authedGroup.GET("/sessions", h.Chat.GetSessions)
		// GET /chat/summary - 当前用户的聊天摘要
		authedGroup.GET("/summary", h.Chat.GetSummary)
		// POST /chat/mark-read/:senderId - 标记对端消息已读
		authedGroup.POST("/mark-read/:senderId", h.Chat.MarkMessagesRead)
		// GET /chat/time-range - 按时间区间查询当前用户参与的消息
		authedGroup.GET("/time-range", h.Chat.GetMessagesWithTimeRange)
	}
}
