// Package mysql 提供数据访问层的具体实现
// 本文件实现 UserRepository 接口，处理用户相关的数据库操作
package mysql

import (
	"tradezone_chat_server/internal/model"

	"gorm.io/gorm"
)

// userRepository UserRepository 接口的实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 创建用户
func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

// FindByUuid 按用户 UUID 查找
func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByEmail 按邮箱查找
func (r *userRepository) FindByEmail(email string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 email=%s", email)
	}
	return &user, nil
}

// FindAll 返回所有用户
func (r *userRepository) FindAll() ([]model.UserInfo, error) {
	var users []model.UserInfo
	if err := r.db.Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "查询用户列表")
	}
	return users, nil
}
