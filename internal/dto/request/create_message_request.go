package request

// CreateMessageRequest 创建消息请求
// ReceiverId 和 RoomId 至多填一个；两者都为空表示全局广播
type CreateMessageRequest struct {
	Content     string `json:"content" binding:"required"`
	ReceiverId  string `json:"receiverId"`
	RoomId      string `json:"roomId"`
	MessageType string `json:"messageType" binding:"omitempty,oneof=text image file system"`
}
