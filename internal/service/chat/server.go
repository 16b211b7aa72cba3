// Package chat 实现了聊天系统的实时网关
// server.go
// 核心职责：聊天服务器聚合结构和依赖注入
// 封装 Hub、MessageBroker、KafkaClient 等组件，提供统一的生命周期管理
package chat

import (
	"time"

	"tradezone_chat_server/internal/service"
)

// ChatServer 聊天服务器聚合结构
// 封装所有实时组件，通过依赖注入管理生命周期
type ChatServer struct {
	// Hub 连接枢纽，承载事件循环
	Hub *Hub

	// Broker 入站帧代理，实现 MessageBroker 接口
	// 根据配置可能是 ChannelBroker 或 KafkaBroker
	Broker MessageBroker

	// KafkaClient Kafka 客户端（仅 Kafka 模式使用）
	KafkaClient *KafkaClient

	// mode 运行模式: "channel" 或 "kafka"
	mode string
}

// ChatServerConfig 聊天服务器配置
type ChatServerConfig struct {
	Mode           string // "channel" 或 "kafka"
	MessageService service.MessageService
	KafkaHostPort  string
	KafkaTopic     string
	KafkaPartition int
	KafkaTimeout   time.Duration
}

// NewChatServer 创建聊天服务器实例
// 根据配置选择 ChannelBroker 或 KafkaBroker
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	cs := &ChatServer{
		Hub:  NewHub(cfg.MessageService),
		mode: cfg.Mode,
	}

	if cfg.Mode == "kafka" {
		// Kafka 模式
		cs.KafkaClient = NewKafkaClient()
		cs.KafkaClient.KafkaInit(KafkaClientConfig{
			HostPort:  cfg.KafkaHostPort,
			ChatTopic: cfg.KafkaTopic,
			Partition: cfg.KafkaPartition,
			Timeout:   cfg.KafkaTimeout,
		})
		cs.Broker = NewKafkaBroker(cs.Hub, cs.KafkaClient, cfg.KafkaPartition)
	} else {
		// Channel 模式（默认）
		cs.Broker = NewChannelBroker(cs.Hub)
	}
	cs.Hub.Broker = cs.Broker

	return cs
}

// Start 启动事件循环和帧消费循环
func (cs *ChatServer) Start() {
	go cs.Hub.Start()
	go cs.Broker.Start()
}

// Close 关闭聊天服务器
func (cs *ChatServer) Close() {
	cs.Broker.Close()
	cs.Hub.Close()
	if cs.KafkaClient != nil {
		cs.KafkaClient.KafkaClose()
	}
}
