package respond

import "time"

// UserChatSummaryRespond 用户聊天摘要
// 会话加上对方昵称和在线状态；IsOnline 由网关在返回前按实时 Presence 覆盖
type UserChatSummaryRespond struct {
	UserId          string     `json:"userId"`
	UserName        string     `json:"userName"`
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	UnreadCount     int        `json:"unreadCount"`
	IsOnline        bool       `json:"isOnline"`
}
