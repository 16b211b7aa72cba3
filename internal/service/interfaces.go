// Package service 定义业务逻辑层接口
// Handler 层和实时网关依赖这些接口而非具体实现，便于测试时替换为 stub
package service

import (
	"time"

	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
)

// UserService 用户注册/登录/Token 管理
type UserService interface {
	// Register 注册新用户并签发 Token 对，邮箱重复时返回 CodeUserExist
	Register(req request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 校验凭证并签发 Token 对
	// 用户查询受 5 秒限时保护，超时返回 CodeDBTimeout
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 校验 Refresh Token 并轮换 Token 对
	RefreshToken(refreshToken string) (*respond.LoginRespond, error)
	// Logout 注销：作废已签发的 Refresh Token
	Logout(userUuid string) error
	// GetUserInfo 获取用户公开信息
	GetUserInfo(uuid string) (*respond.UserRespond, error)
}

// MessageService 消息日志操作与派生会话聚合
type MessageService interface {
	// CreateMessage 持久化一条消息（HTTP 入口，不做实时分发）
	CreateMessage(senderId string, req request.CreateMessageRequest) (*respond.MessageRespond, error)
	// GetAllMessages 返回完整消息日志，按存储顺序
	GetAllMessages() ([]respond.MessageRespond, error)
	// GetMessagesByUser 返回指定用户发送的消息，按 createdAt 升序
	GetMessagesByUser(userId string) ([]respond.MessageRespond, error)
	// GetMessagesByRoom 返回指定房间的消息，按 createdAt 升序
	GetMessagesByRoom(roomId string) ([]respond.MessageRespond, error)
	// GetDirectMessages 返回两个用户之间的双向私聊消息，按 createdAt 升序
	GetDirectMessages(userOneId, userTwoId string) ([]respond.MessageRespond, error)
	// GetUserChatSessions 从消息日志派生用户的会话列表，按最近活跃降序
	GetUserChatSessions(userId string) ([]respond.ChatSessionRespond, error)
	// GetUserChatSummary 会话列表加上对方昵称，IsOnline 由调用方覆盖
	GetUserChatSummary(userId string) ([]respond.UserChatSummaryRespond, error)
	// MarkMessagesAsRead 将 senderId 发给 userId 的未读消息标记已读（幂等）
	MarkMessagesAsRead(userId, senderId string) error
	// GetMessagesWithTimeRange 返回用户参与的、createdAt 在 [start, end] 内的消息，升序
	GetMessagesWithTimeRange(userId string, start, end time.Time) ([]respond.MessageRespond, error)
	// DeleteMessage 按 ID 删除消息（幂等）
	DeleteMessage(messageId string) error
}
