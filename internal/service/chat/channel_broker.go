// Package chat 实现了聊天系统的实时网关
// channel_broker.go
// 核心职责：单机模式下的入站帧代理
// 不依赖外部消息队列，帧直接经内存通道进入 Hub，适合小规模或开发环境
package chat

import (
	"context"

	"tradezone_chat_server/pkg/constants"
	"tradezone_chat_server/pkg/errorx"
)

// ChannelBroker 基于内存通道的 MessageBroker 实现
type ChannelBroker struct {
	hub    *Hub
	frames chan InboundFrame
	done   chan struct{}
}

// NewChannelBroker 创建 ChannelBroker 实例
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:    hub,
		frames: make(chan InboundFrame, constants.CHANNEL_SIZE),
		done:   make(chan struct{}),
	}
}

// Publish 实现 MessageBroker 接口：帧入通道
// 通道满时立即报错而不是阻塞读协程
func (b *ChannelBroker) Publish(ctx context.Context, frame InboundFrame) error {
	select {
	case b.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errorx.New(errorx.CodeServerBusy, "消息通道已满，请稍后重试")
	}
}

// Start 实现 MessageBroker 接口：启动消费循环
func (b *ChannelBroker) Start() {
	for {
		select {
		case frame := <-b.frames:
			b.hub.Dispatch(frame)
		case <-b.done:
			return
		}
	}
}

// Close 实现 MessageBroker 接口
func (b *ChannelBroker) Close() {
	close(b.done)
}
