// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	User    UserRepository    // 用户 Repository
	Message MessageRepository // 消息 Repository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
	}
}
