// Package model 定义数据库实体模型
// 本文件定义消息模型，消息日志是会话/未读数等派生数据的唯一来源
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Message 消息模型
// 对应数据库 message 表
// 约束：ReceiverId 和 RoomId 至多设置一个；两者都为空表示全局广播消息
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 雪花 ID 的字符串形式，避免 JavaScript 侧精度丢失
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:消息雪花ID"`

	// Content 消息文本内容，创建时必须非空
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容"`

	// SenderId 发送者 UUID
	SenderId string `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid"`

	// SenderName 发送者昵称
	// 冗余存储发送时刻的快照，避免每次查询消息时关联用户表
	SenderName string `gorm:"column:sender_name;type:varchar(50);not null;comment:发送者昵称"`

	// ReceiverId 私聊接收者 UUID，空字符串表示未设置
	ReceiverId string `gorm:"column:receiver_id;index;type:char(20);comment:接收者uuid"`

	// RoomId 房间标识，空字符串表示未设置
	RoomId string `gorm:"column:room_id;index;type:varchar(50);comment:房间id"`

	// Type 消息类型：text/image/file/system，默认 text
	Type string `gorm:"column:type;type:varchar(10);default:text;not null;comment:消息类型"`

	// ReadAt 已读时间
	// 仅对私聊消息有意义，接收方确认后设置且只设置一次
	ReadAt sql.NullTime `gorm:"column:read_at;comment:已读时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
