// Package mysql 提供数据访问层的具体实现
// 本文件实现 MessageRepository 接口，处理消息日志的数据库操作
package mysql

import (
	"tradezone_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 追加一条消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

// FindAll 返回完整消息日志，按存储顺序
func (r *messageRepository) FindAll() ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "查询全部消息")
	}
	return messages, nil
}

// FindBySenderId 返回指定用户发送的消息
// 只按 sender_id 过滤，接收侧的消息不在此查询路径内
func (r *messageRepository) FindBySenderId(userId string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("sender_id = ?", userId).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户消息 sender_id=%s", userId)
	}
	return messages, nil
}

// FindByRoomId 返回指定房间的消息
func (r *messageRepository) FindByRoomId(roomId string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("room_id = ?", roomId).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询房间消息 room_id=%s", roomId)
	}
	return messages, nil
}

// FindDirect 返回两个用户之间的双向私聊消息
func (r *messageRepository) FindDirect(userOneId, userTwoId string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userOneId, userTwoId, userTwoId, userOneId,
	).Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询私聊消息 %s <-> %s", userOneId, userTwoId)
	}
	return messages, nil
}

// UpdateFields 按消息 ID 合并更新字段
// GORM 的 Updates 自动刷新 updated_at；ID 不存在时影响行数为 0，不视为错误
func (r *messageRepository) UpdateFields(uuid string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).Updates(fields).Error; err != nil {
		return wrapDBErrorf(err, "更新消息 uuid=%s", uuid)
	}
	return nil
}

// DeleteByUuid 按消息 ID 删除（幂等，ID 不存在时为空操作）
func (r *messageRepository) DeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%s", uuid)
	}
	return nil
}
