package respond

import "time"

// MessageRespond 消息响应
// 字段名与前端约定一致；ReceiverId/RoomId/ReadAt 未设置时省略
type MessageRespond struct {
	Id          string     `json:"id"`
	Content     string     `json:"content"`
	SenderId    string     `json:"senderId"`
	SenderName  string     `json:"senderName"`
	ReceiverId  string     `json:"receiverId,omitempty"`
	RoomId      string     `json:"roomId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	MessageType string     `json:"messageType"`
}
