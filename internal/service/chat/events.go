// Package chat 实现了聊天系统的实时网关
// events.go
// 核心职责：定义 WebSocket 事件协议
// 所有帧都是统一信封 {"event": "...", "data": {...}}，data 按事件类型解析
package chat

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端 -> 服务端事件
const (
	EventSendMessage       = "sendMessage"
	EventJoinRoom          = "joinRoom"
	EventLeaveRoom         = "leaveRoom"
	EventGetOnlineUsers    = "getOnlineUsers"
	EventMarkMessagesRead  = "markMessagesAsRead"
	EventGetChatSummary    = "getUserChatSummary"
	EventTyping            = "typing"
	EventGetMessagesInTime = "getMessagesWithTimeRange"
)

// 服务端 -> 客户端事件
const (
	EventMessageSent      = "messageSent"
	EventNewMessage       = "newMessage"
	EventUserOnline       = "userOnline"
	EventUserOffline      = "userOffline"
	EventUserJoinedRoom   = "userJoinedRoom"
	EventUserLeftRoom     = "userLeftRoom"
	EventOnlineUsers      = "onlineUsers"
	EventMessagesRead     = "messagesRead"
	EventUserChatSummary  = "userChatSummary"
	EventUserTyping       = "userTyping"
	EventMessagesWithTime = "messagesWithTimeRange"
	EventSystemMessage    = "systemMessage"
	EventError            = "error"
)

// Event WebSocket 帧信封
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload 加入/离开房间请求
type RoomPayload struct {
	RoomId string `json:"roomId"`
}

// MarkReadPayload 标记已读请求：把 senderId 发给当前用户的消息标为已读
type MarkReadPayload struct {
	SenderId string `json:"senderId"`
}

// TypingPayload 输入状态通知
type TypingPayload struct {
	ReceiverId string `json:"receiverId,omitempty"`
	RoomId     string `json:"roomId,omitempty"`
	IsTyping   bool   `json:"isTyping"`
}

// TimeRangePayload 时间区间查询请求，RFC3339 格式
type TimeRangePayload struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// PresencePayload 上线/下线广播
// 下线事件不携带 ConnectionId
type PresencePayload struct {
	UserId       string `json:"userId"`
	UserName     string `json:"userName"`
	ConnectionId string `json:"connectionId,omitempty"`
}

// RoomEventPayload 房间成员变动广播
type RoomEventPayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
	RoomId   string `json:"roomId"`
}

// TypingBroadcastPayload 输入状态广播
type TypingBroadcastPayload struct {
	UserId   string `json:"userId"`
	UserName string `json:"userName"`
	RoomId   string `json:"roomId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// MessagesReadPayload 已读回执广播
type MessagesReadPayload struct {
	ReaderId string `json:"readerId"`
	SenderId string `json:"senderId"`
}

// SystemMessagePayload 系统公告
type SystemMessagePayload struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ErrorPayload 行内错误响应，只发给出错的连接
type ErrorPayload struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// mustEvent 将事件和负载序列化为完整帧
// 负载全部由服务端构造，序列化失败属于编码错误，记录后返回空帧
func mustEvent(event string, payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("事件负载序列化失败", zap.String("event", event), zap.Error(err))
		return nil
	}
	frame, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		zap.L().Error("事件帧序列化失败", zap.String("event", event), zap.Error(err))
		return nil
	}
	return frame
}
