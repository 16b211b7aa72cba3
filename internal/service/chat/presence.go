// Package chat 实现了聊天系统的实时网关
// presence.go
// 核心职责：在线状态登记表
// 按连接粒度记录在线信息，同一用户多端登录会有多个条目
// 在线状态只存在内存中，连接断开即消失，不做持久化
package chat

import (
	"sync"

	"tradezone_chat_server/internal/dto/respond"
)

// PresenceEntry 一条连接的在线记录
type PresenceEntry struct {
	ConnId   string
	UserId   string
	UserName string
}

// PresenceRegistry 并发安全的在线状态登记表
// Hub 事件循环写入，HTTP 摘要接口并发读取
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]PresenceEntry // key 为 ConnId
}

// NewPresenceRegistry 创建空登记表
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[string]PresenceEntry),
	}
}

// Register 登记一条连接
func (r *PresenceRegistry) Register(entry PresenceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ConnId] = entry
}

// Unregister 注销连接，返回该用户是否还有其他在线连接
// 重复注销是空操作
func (r *PresenceRegistry) Unregister(connId string) (entry PresenceEntry, stillOnline bool, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, found = r.entries[connId]
	if !found {
		return PresenceEntry{}, false, false
	}
	delete(r.entries, connId)
	for _, e := range r.entries {
		if e.UserId == entry.UserId {
			stillOnline = true
			break
		}
	}
	return entry, stillOnline, true
}

// Entry 按连接 ID 查找在线记录
func (r *PresenceRegistry) Entry(connId string) (PresenceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[connId]
	return entry, ok
}

// IsOnline 判断用户是否至少有一条在线连接
func (r *PresenceRegistry) IsOnline(userId string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.UserId == userId {
			return true
		}
	}
	return false
}

// ConnectionsOf 返回用户所有在线连接的 ID
func (r *PresenceRegistry) ConnectionsOf(userId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connIds := make([]string, 0, 2)
	for _, e := range r.entries {
		if e.UserId == userId {
			connIds = append(connIds, e.ConnId)
		}
	}
	return connIds
}

// ListOnline 返回所有在线连接条目
func (r *PresenceRegistry) ListOnline() []respond.OnlineUserRespond {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]respond.OnlineUserRespond, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, respond.OnlineUserRespond{
			UserId:       e.UserId,
			UserName:     e.UserName,
			ConnectionId: e.ConnId,
		})
	}
	return list
}
