package respond

import (
	"tradezone_chat_server/internal/model"
)

// FromMessage 将消息模型转换为对外响应结构
func FromMessage(m *model.Message) MessageRespond {
	rsp := MessageRespond{
		Id:          m.Uuid,
		Content:     m.Content,
		SenderId:    m.SenderId,
		SenderName:  m.SenderName,
		ReceiverId:  m.ReceiverId,
		RoomId:      m.RoomId,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		MessageType: m.Type,
	}
	if m.ReadAt.Valid {
		t := m.ReadAt.Time
		rsp.ReadAt = &t
	}
	return rsp
}

// FromMessages 批量转换
func FromMessages(messages []model.Message) []MessageRespond {
	rsps := make([]MessageRespond, 0, len(messages))
	for i := range messages {
		rsps = append(rsps, FromMessage(&messages[i]))
	}
	return rsps
}
