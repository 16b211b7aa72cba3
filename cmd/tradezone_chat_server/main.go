package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradezone_chat_server/internal/config"
	dao "tradezone_chat_server/internal/dao/mysql"
	myredis "tradezone_chat_server/internal/dao/redis"
	"tradezone_chat_server/internal/handler"
	"tradezone_chat_server/internal/http_server"
	"tradezone_chat_server/internal/infrastructure/logger"
	"tradezone_chat_server/internal/service"
	"tradezone_chat_server/internal/service/chat"
	"tradezone_chat_server/pkg/util/jwt"
	"tradezone_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花 ID 生成器
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	zap.L().Info("雪花 ID 生成器初始化成功")

	// 4. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	cache := myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化 Service 层 (依赖注入)
	services := service.NewServices(repos, cache)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化 ChatServer（实时网关）
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:           conf.KafkaConfig.MessageMode,
		MessageService: services.Message,
		KafkaHostPort:  conf.KafkaConfig.HostPort,
		KafkaTopic:     conf.KafkaConfig.ChatTopic,
		KafkaPartition: conf.KafkaConfig.Partition,
		KafkaTimeout:   conf.KafkaConfig.Timeout * time.Second,
	})
	chatServer.Start()
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 9. 初始化 Handler 层和参数校验翻译器
	handlers := handler.NewHandlers(services, chatServer.Hub)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化翻译器失败", zap.Error(err))
	}

	// 10. 初始化 HTTP 服务器并启动
	engine := http_server.Init(handlers)
	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("HTTP 服务器已启动")

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit

	zap.L().Info("关闭服务器...")
	chatServer.Close()
	zap.L().Info("服务器已关闭")
}
