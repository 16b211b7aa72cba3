package service

import (
	"tradezone_chat_server/internal/dao/mysql"
	"tradezone_chat_server/internal/dao/redis"
	"tradezone_chat_server/internal/service/message"
	"tradezone_chat_server/internal/service/user"
)

// Services 聚合所有业务服务，作为依赖注入的根
type Services struct {
	User    UserService
	Message MessageService
}

// NewServices 组装业务层
func NewServices(repos *mysql.Repositories, cache redis.CacheService) *Services {
	return &Services{
		User:    user.NewUserService(repos, cache),
		Message: message.NewMessageService(repos),
	}
}
