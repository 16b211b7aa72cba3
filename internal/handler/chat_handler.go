// Package handler 提供 HTTP 请求处理器
// 本文件处理消息与会话相关的 API 请求
package handler

import (
	"time"

	"go.uber.org/zap"

	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
	"tradezone_chat_server/internal/service"
	"tradezone_chat_server/internal/service/chat"
	"tradezone_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ChatHandler 消息与会话请求处理器
type ChatHandler struct {
	messageService service.MessageService
	hub            *chat.Hub
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(messageService service.MessageService, hub *chat.Hub) *ChatHandler {
	return &ChatHandler{messageService: messageService, hub: hub}
}

// CreateMessage 创建消息
// POST /chat/message (需要认证)
// HTTP 入口只做持久化，不触发任何实时分发
func (h *ChatHandler) CreateMessage(c *gin.Context) {
	var req request.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	senderId := c.GetString("user_id")
	data, err := h.messageService.CreateMessage(senderId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetAllMessages 获取完整消息日志
// GET /chat/messages
// 存储不可用时降级为空列表而不是报错，保证前端始终能渲染
func (h *ChatHandler) GetAllMessages(c *gin.Context) {
	data, err := h.messageService.GetAllMessages()
	if err != nil {
		zap.L().Error("查询消息日志失败，降级返回空列表", zap.Error(err))
		HandleSuccess(c, []respond.MessageRespond{})
		return
	}
	HandleSuccess(c, data)
}

// GetMessagesByUser 获取指定用户发送的消息
// GET /chat/messages/user/:userId
func (h *ChatHandler) GetMessagesByUser(c *gin.Context) {
	userId := c.Param("userId")
	data, err := h.messageService.GetMessagesByUser(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessagesByRoom 获取指定房间的消息
// GET /chat/messages/room/:roomId
func (h *ChatHandler) GetMessagesByRoom(c *gin.Context) {
	roomId := c.Param("roomId")
	data, err := h.messageService.GetMessagesByRoom(roomId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetDirectMessages 获取两个用户之间的私聊消息
// GET /chat/messages/direct/:userOneId/:userTwoId
func (h *ChatHandler) GetDirectMessages(c *gin.Context) {
	userOneId := c.Param("userOneId")
	userTwoId := c.Param("userTwoId")
	data, err := h.messageService.GetDirectMessages(userOneId, userTwoId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetSessions 获取当前用户的会话列表
// GET /chat/sessions (需要认证)
// 会话完全从消息日志派生，按最近活跃降序
func (h *ChatHandler) GetSessions(c *gin.Context) {
	userId := c.GetString("user_id")
	data, err := h.messageService.GetUserChatSessions(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetSummary 获取当前用户的聊天摘要
// GET /chat/summary (需要认证)
// IsOnline 按实时在线状态覆盖
func (h *ChatHandler) GetSummary(c *gin.Context) {
	userId := c.GetString("user_id")
	data, err := h.messageService.GetUserChatSummary(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	for i := range data {
		data[i].IsOnline = h.hub.Presence.IsOnline(data[i].UserId)
	}
	HandleSuccess(c, data)
}

// MarkMessagesRead 标记已读
// POST /chat/mark-read/:senderId (需要认证)
// 把 senderId 发给当前用户的未读消息全部标为已读（幂等）
func (h *ChatHandler) MarkMessagesRead(c *gin.Context) {
	userId := c.GetString("user_id")
	senderId := c.Param("senderId")
	if err := h.messageService.MarkMessagesAsRead(userId, senderId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetMessagesWithTimeRange 按时间区间查询当前用户参与的消息
// GET /chat/time-range?startTime=...&endTime=... (需要认证)
func (h *ChatHandler) GetMessagesWithTimeRange(c *gin.Context) {
	var req request.TimeRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "起始时间格式错误"))
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "结束时间格式错误"))
		return
	}

	userId := c.GetString("user_id")
	data, err := h.messageService.GetMessagesWithTimeRange(userId, start, end)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除消息
// DELETE /chat/message/:id
// ID 不存在时同样返回成功（幂等删除）
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageId := c.Param("id")
	if err := h.messageService.DeleteMessage(messageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetOnlineUsers 获取在线用户列表
// GET /chat/online-users
// 按连接粒度返回，多端登录的用户会出现多条
func (h *ChatHandler) GetOnlineUsers(c *gin.Context) {
	HandleSuccess(c, h.hub.Presence.ListOnline())
}
