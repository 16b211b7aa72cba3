// Package chat 实现了聊天系统的实时网关
// conn.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 UserConn 对象，管理读写协程 (Read/Write Loop)
// 3. 读协程把前端帧投递给 Broker；写协程把 Hub 分发的帧推回前端
package chat

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tradezone_chat_server/pkg/constants"
)

// UserConn 一条已认证的 WebSocket 连接
type UserConn struct {
	Conn     *websocket.Conn
	ConnId   string
	UserId   string
	UserName string
	SendBack chan []byte // Hub -> 前端
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 检查连接的Origin头
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Read 读取 websocket 帧并投递给 Broker
func (c *UserConn) Read(hub *Hub) {
	defer func() {
		_ = c.Conn.Close()
		hub.SendConnToLogout(c)
	}()
	for {
		_, jsonMessage, err := c.Conn.ReadMessage() // 阻塞状态
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws读取失败", zap.String("conn_id", c.ConnId), zap.Error(err))
			}
			return
		}
		frame := InboundFrame{ConnId: c.ConnId, Data: jsonMessage}
		if err := hub.Broker.Publish(context.Background(), frame); err != nil {
			zap.L().Error("帧投递失败", zap.String("conn_id", c.ConnId), zap.Error(err))
		}
	}
}

// Write 从 SendBack 通道读取帧推送给 websocket
func (c *UserConn) Write() {
	for message := range c.SendBack { // 阻塞状态
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			zap.L().Warn("ws写入失败", zap.String("conn_id", c.ConnId), zap.Error(err))
			return
		}
	}
}

// Send 非阻塞推送，通道满时丢帧并记录（慢客户端不应拖垮事件循环）
func (c *UserConn) Send(frame []byte) {
	if frame == nil {
		return
	}
	select {
	case c.SendBack <- frame:
	default:
		zap.L().Warn("连接发送缓冲已满，丢弃帧", zap.String("conn_id", c.ConnId))
	}
}

// NewClientInit 握手认证通过后升级连接并注册到 Hub
func NewClientInit(c *gin.Context, hub *Hub, userId, userName string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws升级失败", zap.Error(err))
		return
	}
	client := &UserConn{
		Conn:     conn,
		ConnId:   uuid.NewString(),
		UserId:   userId,
		UserName: userName,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
	hub.SendConnToLogin(client)
	go client.Read(hub)
	go client.Write()
	zap.L().Info("ws连接成功", zap.String("conn_id", client.ConnId), zap.String("user_id", userId))
}
