// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
package mysql

import (
	"tradezone_chat_server/internal/model"
)

// MessageRepository 消息日志存取接口
// 所有读写失败以 CodeStoreUnavailable 包装后向上传播，由调用方决定降级策略
type MessageRepository interface {
	// Create 追加一条消息（Uuid/时间戳由调用方或 GORM 填充）
	Create(message *model.Message) error
	// FindAll 返回完整消息日志，按存储顺序
	FindAll() ([]model.Message, error)
	// FindBySenderId 返回指定用户发送的消息
	// 注意：只按 sender_id 过滤，不含该用户收到的消息
	FindBySenderId(userId string) ([]model.Message, error)
	// FindByRoomId 返回指定房间的消息
	FindByRoomId(roomId string) ([]model.Message, error)
	// FindDirect 返回两个用户之间的双向私聊消息
	FindDirect(userOneId, userTwoId string) ([]model.Message, error)
	// UpdateFields 按消息 ID 合并更新字段（目前仅用于设置 read_at），ID 不存在时为空操作
	UpdateFields(uuid string, fields map[string]any) error
	// DeleteByUuid 按消息 ID 删除，ID 不存在时为空操作（幂等）
	DeleteByUuid(uuid string) error
}

// UserRepository 用户信息存取接口
type UserRepository interface {
	// Create 创建用户
	Create(user *model.UserInfo) error
	// FindByUuid 按用户 UUID 查找
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByEmail 按邮箱查找（登录凭证）
	FindByEmail(email string) (*model.UserInfo, error)
	// FindAll 返回所有用户
	FindAll() ([]model.UserInfo, error)
}
