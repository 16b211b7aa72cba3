// Package chat 实现了聊天系统的实时网关
// router.go
// 核心职责：入站帧的事件路由
// 1. 校验帧来源连接的身份（未登记的连接一律拒绝）
// 2. 按事件类型分发：消息发送、房间操作、已读回执、摘要/在线列表查询、输入状态
// 3. 消息先持久化再分发，持久化失败不做任何分发
package chat

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/pkg/errorx"
)

// sendError 把错误作为行内 error 事件发回出错的连接
func sendError(client *UserConn, err error) {
	client.Send(mustEvent(EventError, ErrorPayload{
		Error: err.Error(),
		Code:  errorx.GetCode(err),
	}))
}

// handleFrame 入站帧统一入口
func (h *Hub) handleFrame(frame InboundFrame) {
	client := h.GetClient(frame.ConnId)
	if client == nil {
		// 连接已断开，帧作废
		zap.L().Debug("丢弃无主帧", zap.String("conn_id", frame.ConnId))
		return
	}
	if _, ok := h.Presence.Entry(frame.ConnId); !ok {
		sendError(client, errorx.ErrUnauthenticated)
		return
	}

	var event Event
	if err := json.Unmarshal(frame.Data, &event); err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "无法解析的消息帧"))
		return
	}

	switch event.Event {
	case EventSendMessage:
		h.handleSendMessage(client, event.Data)
	case EventJoinRoom:
		h.handleJoinRoom(client, event.Data)
	case EventLeaveRoom:
		h.handleLeaveRoom(client, event.Data)
	case EventGetOnlineUsers:
		client.Send(mustEvent(EventOnlineUsers, h.Presence.ListOnline()))
	case EventMarkMessagesRead:
		h.handleMarkMessagesRead(client, event.Data)
	case EventGetChatSummary:
		h.handleGetChatSummary(client)
	case EventTyping:
		h.handleTyping(client, event.Data)
	case EventGetMessagesInTime:
		h.handleGetMessagesWithTimeRange(client, event.Data)
	default:
		sendError(client, errorx.Newf(errorx.CodeInvalidMessage, "未知事件: %s", event.Event))
	}
}

// handleSendMessage 处理消息发送
// 1. 持久化消息（失败则只回错误，不做分发）
// 2. 给发送连接回 messageSent 确认
// 3. 按目标类型分发 newMessage：私聊/房间/全员广播
func (h *Hub) handleSendMessage(client *UserConn, data json.RawMessage) {
	var req request.CreateMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "无法解析的消息内容"))
		return
	}

	messageRsp, err := h.messageService.CreateMessage(client.UserId, req)
	if err != nil {
		zap.L().Error("消息持久化失败", zap.String("sender_id", client.UserId), zap.Error(err))
		sendError(client, err)
		return
	}

	client.Send(mustEvent(EventMessageSent, messageRsp))

	newMessageFrame := mustEvent(EventNewMessage, messageRsp)
	switch {
	case req.ReceiverId != "":
		// 私聊：推给接收者所有在线连接，并回显给发出这条消息的连接
		h.deliverToUser(req.ReceiverId, newMessageFrame)
		if req.ReceiverId != client.UserId {
			client.Send(newMessageFrame)
		}
	case req.RoomId != "":
		// 房间：推给房间所有成员连接（发送者已加入时也会收到）
		h.deliverToRoom(req.RoomId, newMessageFrame)
	default:
		// 无目标视为全员广播
		h.broadcastAll(newMessageFrame)
	}
}

// handleJoinRoom 处理加入房间
func (h *Hub) handleJoinRoom(client *UserConn, data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == "" {
		sendError(client, errorx.New(errorx.CodeInvalidMessage, "房间 ID 不能为空"))
		return
	}

	members, ok := h.rooms[payload.RoomId]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[payload.RoomId] = members
	}
	if _, joined := members[client.ConnId]; joined {
		return // 重复加入是空操作
	}
	members[client.ConnId] = struct{}{}

	h.deliverToRoom(payload.RoomId, mustEvent(EventUserJoinedRoom, RoomEventPayload{
		UserId:   client.UserId,
		UserName: client.UserName,
		RoomId:   payload.RoomId,
	}))
}

// handleLeaveRoom 处理离开房间，未加入时为空操作
func (h *Hub) handleLeaveRoom(client *UserConn, data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomId == "" {
		sendError(client, errorx.New(errorx.CodeInvalidMessage, "房间 ID 不能为空"))
		return
	}

	members, ok := h.rooms[payload.RoomId]
	if !ok {
		return
	}
	if _, joined := members[client.ConnId]; !joined {
		return
	}
	delete(members, client.ConnId)
	if len(members) == 0 {
		delete(h.rooms, payload.RoomId)
	}

	h.deliverToRoom(payload.RoomId, mustEvent(EventUserLeftRoom, RoomEventPayload{
		UserId:   client.UserId,
		UserName: client.UserName,
		RoomId:   payload.RoomId,
	}))
}

// handleMarkMessagesRead 处理已读回执
// 标记成功后通知消息发送方（对端），让其界面同步已读状态
func (h *Hub) handleMarkMessagesRead(client *UserConn, data json.RawMessage) {
	var payload MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.SenderId == "" {
		sendError(client, errorx.New(errorx.CodeInvalidMessage, "发送者 ID 不能为空"))
		return
	}

	if err := h.messageService.MarkMessagesAsRead(client.UserId, payload.SenderId); err != nil {
		sendError(client, err)
		return
	}

	h.deliverToUser(payload.SenderId, mustEvent(EventMessagesRead, MessagesReadPayload{
		ReaderId: client.UserId,
		SenderId: payload.SenderId,
	}))
}

// handleGetChatSummary 处理聊天摘要查询
// 聚合结果的 IsOnline 按 Presence 实时覆盖
func (h *Hub) handleGetChatSummary(client *UserConn) {
	summaries, err := h.messageService.GetUserChatSummary(client.UserId)
	if err != nil {
		sendError(client, err)
		return
	}
	for i := range summaries {
		summaries[i].IsOnline = h.Presence.IsOnline(summaries[i].UserId)
	}
	client.Send(mustEvent(EventUserChatSummary, summaries))
}

// handleTyping 处理输入状态通知，不回显给自己；没有目标的通知直接丢弃
func (h *Hub) handleTyping(client *UserConn, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "无法解析的输入状态"))
		return
	}

	frame := mustEvent(EventUserTyping, TypingBroadcastPayload{
		UserId:   client.UserId,
		UserName: client.UserName,
		RoomId:   payload.RoomId,
		IsTyping: payload.IsTyping,
	})

	switch {
	case payload.ReceiverId != "":
		if payload.ReceiverId != client.UserId {
			h.deliverToUser(payload.ReceiverId, frame)
		}
	case payload.RoomId != "":
		for connId := range h.rooms[payload.RoomId] {
			if connId == client.ConnId {
				continue
			}
			if member := h.GetClient(connId); member != nil {
				member.Send(frame)
			}
		}
	default:
		// 既无接收者也无房间的输入状态没有分发目标，丢弃
	}
}

// handleGetMessagesWithTimeRange 处理时间区间消息查询
// 时间为 RFC3339 格式，区间两端都包含；start > end 返回空列表
func (h *Hub) handleGetMessagesWithTimeRange(client *UserConn, data json.RawMessage) {
	var payload TimeRangePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "无法解析的时间区间"))
		return
	}
	start, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "起始时间格式错误"))
		return
	}
	end, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		sendError(client, errorx.Wrap(err, errorx.CodeInvalidMessage, "结束时间格式错误"))
		return
	}

	messages, err := h.messageService.GetMessagesWithTimeRange(client.UserId, start, end)
	if err != nil {
		sendError(client, err)
		return
	}
	client.Send(mustEvent(EventMessagesWithTime, messages))
}
