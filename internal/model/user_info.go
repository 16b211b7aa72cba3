// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含用户基本资料和认证信息
package model

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 user_info 表
type UserInfo struct {
	gorm.Model

	// Uuid 用户唯一标识
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Name 用户昵称，聊天摘要中的显示名
	Name string `gorm:"column:name;type:varchar(50);not null;comment:昵称"`

	// Email 邮箱地址，登录凭证
	Email string `gorm:"column:email;uniqueIndex;type:varchar(50);not null;comment:邮箱"`

	// Password 密码（已哈希）
	// 存储 bcrypt 哈希后的密码，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// RawPassword 明文密码（不存入数据库）
	// 用于接收前端传来的明文密码，在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// BeforeSave GORM Hook：在创建和更新前自动调用
// 将 RawPassword 明文密码加密后存入 Password 字段，调用方无需手动加密
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = "" // 清空明文，防止泄露
	}
	return nil
}

// CheckPassword 校验密码是否正确，用于登录验证
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
