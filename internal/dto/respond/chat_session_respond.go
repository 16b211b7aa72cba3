package respond

import "time"

// ChatSessionRespond 派生会话
// 每次查询从消息日志重新计算，不做缓存
type ChatSessionRespond struct {
	// Id 确定性会话键：参与者 ID 排序后用 "_" 连接
	Id string `json:"id"`
	// Participants 两个参与者
	Participants []string `json:"participants"`
	// LastMessage 按 createdAt 最新的一条消息
	LastMessage *MessageRespond `json:"lastMessage,omitempty"`
	// LastActivity 最新消息的 createdAt
	LastActivity time.Time `json:"lastActivity"`
	// UnreadCount 查看者 ID -> 发给该查看者且未读的消息数
	UnreadCount map[string]int `json:"unreadCount"`
}
