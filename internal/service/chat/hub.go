// Package chat 实现了聊天系统的实时网关
// hub.go
// 核心职责：单事件循环的连接枢纽
// 1. 维护在线连接和房间成员表，所有变更都在事件循环内串行执行
// 2. 消费 Broker 投递的入站帧，按事件类型分发到处理函数
// 3. 管理连接登录/登出事件，维护 Presence 登记表并广播上下线
package chat

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tradezone_chat_server/internal/service"
	"tradezone_chat_server/pkg/constants"
)

// Hub 实时网关的核心结构
type Hub struct {
	// Clients 存储所有在线连接的映射表，Key 为 ConnId，Value 为 *UserConn
	// 使用 sync.Map 实现并发安全，HTTP 层也会只读访问
	Clients sync.Map
	// Login 连接登录通道，当有新连接建立时写入此通道
	Login chan *UserConn
	// Logout 连接登出通道，当连接断开时写入此通道
	Logout chan *UserConn
	// Frames 入站帧通道，由 Broker 消费循环写入
	Frames chan InboundFrame

	// Presence 在线状态登记表，HTTP 摘要接口并发读取
	Presence *PresenceRegistry

	// Broker 入站帧代理，由 ChatServer 注入
	Broker MessageBroker

	// rooms 房间成员表，Key 为 RoomId，Value 为连接 ID 集合
	// 只在事件循环内读写，不需要加锁
	rooms map[string]map[string]struct{}

	// deadConns 登出先于登录被消费的连接墓碑
	// 每个墓碑都会被随后到达的登录事件消费掉，不会堆积
	deadConns map[string]struct{}

	messageService service.MessageService

	done chan struct{}
}

// NewHub 创建 Hub 实例（依赖注入）
func NewHub(messageService service.MessageService) *Hub {
	return &Hub{
		Login:          make(chan *UserConn, constants.CHANNEL_SIZE),
		Logout:         make(chan *UserConn, constants.CHANNEL_SIZE),
		Frames:         make(chan InboundFrame, constants.CHANNEL_SIZE),
		Presence:       NewPresenceRegistry(),
		rooms:          make(map[string]map[string]struct{}),
		deadConns:      make(map[string]struct{}),
		messageService: messageService,
		done:           make(chan struct{}),
	}
}

// SendConnToLogin 提交连接登录事件
func (h *Hub) SendConnToLogin(client *UserConn) {
	h.Login <- client
}

// SendConnToLogout 提交连接登出事件
func (h *Hub) SendConnToLogout(client *UserConn) {
	h.Logout <- client
}

// Dispatch 提交入站帧，由 Broker 消费循环调用
func (h *Hub) Dispatch(frame InboundFrame) {
	select {
	case h.Frames <- frame:
	case <-h.done:
	}
}

// Start 启动 Hub 主循环
// 登录/登出/入站帧三类事件都在同一个循环里串行处理，
// 连接表、房间表和消息路由不会出现并发竞态
func (h *Hub) Start() {
	for {
		select {
		case client := <-h.Login:
			if client == nil {
				continue
			}
			h.handleLogin(client)

		case client := <-h.Logout:
			if client == nil {
				continue
			}
			h.handleLogout(client)

		case frame := <-h.Frames:
			h.handleFrame(frame)

		case <-h.done:
			return
		}
	}
}

// Close 停止事件循环并关闭所有连接
func (h *Hub) Close() {
	close(h.done)
	h.Clients.Range(func(key, value any) bool {
		client := value.(*UserConn)
		_ = client.Conn.Close()
		return true
	})
}

// GetClient 按连接 ID 获取连接
func (h *Hub) GetClient(connId string) *UserConn {
	value, ok := h.Clients.Load(connId)
	if !ok {
		return nil
	}
	return value.(*UserConn)
}

// handleLogin 处理连接登录事件
func (h *Hub) handleLogin(client *UserConn) {
	// 连接升级后立刻断开时，读协程的登出事件可能先被消费；
	// 留下的墓碑在这里把迟到的登录作废，避免登记一条永远不会登出的死连接
	if _, dead := h.deadConns[client.ConnId]; dead {
		delete(h.deadConns, client.ConnId)
		close(client.SendBack)
		zap.L().Info(fmt.Sprintf("连接%s在登录前已断开，丢弃", client.ConnId))
		return
	}

	h.Clients.Store(client.ConnId, client)
	h.Presence.Register(PresenceEntry{
		ConnId:   client.ConnId,
		UserId:   client.UserId,
		UserName: client.UserName,
	})
	zap.L().Info(fmt.Sprintf("用户%s上线，连接%s", client.UserId, client.ConnId))

	// 上下线按连接粒度全员通知（含新连接自己），多端登录每条连接各播一次
	h.broadcastAll(mustEvent(EventUserOnline, PresencePayload{
		UserId:       client.UserId,
		UserName:     client.UserName,
		ConnectionId: client.ConnId,
	}))
	// 给新连接推送当前在线列表
	client.Send(mustEvent(EventOnlineUsers, h.Presence.ListOnline()))
}

// handleLogout 处理连接登出事件
func (h *Hub) handleLogout(client *UserConn) {
	if _, loaded := h.Clients.LoadAndDelete(client.ConnId); !loaded {
		// 登录事件还没被消费（或已登出过），留墓碑让登录事件丢弃该连接
		h.deadConns[client.ConnId] = struct{}{}
		return
	}
	// 从所有房间移除并通知房间其他成员
	for roomId, members := range h.rooms {
		if _, ok := members[client.ConnId]; !ok {
			continue
		}
		delete(members, client.ConnId)
		if len(members) == 0 {
			delete(h.rooms, roomId)
		}
		h.deliverToRoom(roomId, mustEvent(EventUserLeftRoom, RoomEventPayload{
			UserId:   client.UserId,
			UserName: client.UserName,
			RoomId:   roomId,
		}))
	}

	entry, _, found := h.Presence.Unregister(client.ConnId)
	if found {
		h.broadcastAll(mustEvent(EventUserOffline, PresencePayload{
			UserId:   entry.UserId,
			UserName: entry.UserName,
		}))
	}

	close(client.SendBack)
	zap.L().Info(fmt.Sprintf("用户%s的连接%s已断开", client.UserId, client.ConnId))
}

// broadcastAll 推送帧给所有在线连接
func (h *Hub) broadcastAll(frame []byte) {
	if frame == nil {
		return
	}
	h.Clients.Range(func(key, value any) bool {
		value.(*UserConn).Send(frame)
		return true
	})
}

// deliverToUser 推送帧给用户的所有在线连接
// 在线状态在投递时实时判定，离线用户静默跳过
func (h *Hub) deliverToUser(userId string, frame []byte) {
	if frame == nil {
		return
	}
	for _, connId := range h.Presence.ConnectionsOf(userId) {
		if client := h.GetClient(connId); client != nil {
			client.Send(frame)
		}
	}
}

// deliverToRoom 推送帧给房间所有成员连接
func (h *Hub) deliverToRoom(roomId string, frame []byte) {
	if frame == nil {
		return
	}
	for connId := range h.rooms[roomId] {
		if client := h.GetClient(connId); client != nil {
			client.Send(frame)
		}
	}
}

// BroadcastSystemMessage 向所有在线连接广播系统公告
func (h *Hub) BroadcastSystemMessage(content string) {
	h.broadcastAll(mustEvent(EventSystemMessage, SystemMessagePayload{
		Content:   content,
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}
