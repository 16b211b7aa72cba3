// Package message 提供消息日志的业务逻辑
// 包含消息的创建/查询/删除，以及从平铺消息日志派生会话、摘要、未读数的聚合逻辑
// 会话和摘要每次查询都从消息日志重新计算，不做缓存，保证不出现陈旧状态
package message

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"tradezone_chat_server/internal/dao/mysql"
	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
	"tradezone_chat_server/internal/model"
	"tradezone_chat_server/pkg/errorx"
	"tradezone_chat_server/pkg/util/snowflake"
)

// messageService MessageService 的实现
type messageService struct {
	repos *mysql.Repositories
}

// NewMessageService 构造函数，注入 Repository 依赖
func NewMessageService(repos *mysql.Repositories) *messageService {
	return &messageService{repos: repos}
}

// CreateMessage 持久化一条消息
// 发送者昵称在此处做快照，后续改名不影响历史消息
func (s *messageService) CreateMessage(senderId string, req request.CreateMessageRequest) (*respond.MessageRespond, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, errorx.ErrInvalidMessage
	}

	senderName := senderId
	if sender, err := s.repos.User.FindByUuid(senderId); err == nil {
		senderName = sender.Name
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	msg := model.Message{
		Uuid:       snowflake.GenerateIDString(),
		Content:    req.Content,
		SenderId:   senderId,
		SenderName: senderName,
		ReceiverId: req.ReceiverId,
		RoomId:     req.RoomId,
		Type:       messageType,
	}

	if err := s.repos.Message.Create(&msg); err != nil {
		zap.L().Error("创建消息失败", zap.String("sender_id", senderId), zap.Error(err))
		return nil, err
	}

	rsp := respond.FromMessage(&msg)
	return &rsp, nil
}

// GetAllMessages 返回完整消息日志，按存储顺序
func (s *messageService) GetAllMessages() ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindAll()
	if err != nil {
		return nil, err
	}
	return respond.FromMessages(messages), nil
}

// sortAscByCreatedAt 按 createdAt 升序排序
func sortAscByCreatedAt(messages []model.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

// GetMessagesByUser 返回指定用户发送的消息
// 查询路径只按 sender_id 过滤（接收侧消息不包含在内），与既有前端行为保持一致
func (s *messageService) GetMessagesByUser(userId string) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindBySenderId(userId)
	if err != nil {
		return nil, err
	}
	sortAscByCreatedAt(messages)
	return respond.FromMessages(messages), nil
}

// GetMessagesByRoom 返回指定房间的消息，升序
func (s *messageService) GetMessagesByRoom(roomId string) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindByRoomId(roomId)
	if err != nil {
		return nil, err
	}
	sortAscByCreatedAt(messages)
	return respond.FromMessages(messages), nil
}

// GetDirectMessages 返回两个用户之间的双向私聊消息，升序
func (s *messageService) GetDirectMessages(userOneId, userTwoId string) ([]respond.MessageRespond, error) {
	messages, err := s.repos.Message.FindDirect(userOneId, userTwoId)
	if err != nil {
		return nil, err
	}
	sortAscByCreatedAt(messages)
	return respond.FromMessages(messages), nil
}

// sessionKey 确定性会话键：参与者 ID 排序后用 "_" 连接
func sessionKey(userOneId, userTwoId string) string {
	if userOneId > userTwoId {
		userOneId, userTwoId = userTwoId, userOneId
	}
	return userOneId + "_" + userTwoId
}

// GetUserChatSessions 从消息日志派生用户的会话列表
// 1. 取全量日志，保留用户为发送方或接收方、且存在对端的消息（广播消息没有对端，不参与会话）
// 2. 按无序参与者对分组
// 3. 每组以 createdAt 最大的消息作为 lastMessage/lastActivity；
//    未读数 = 对端发出且 readAt 未设置的消息数
// 4. 按 lastActivity 降序返回
func (s *messageService) GetUserChatSessions(userId string) ([]respond.ChatSessionRespond, error) {
	allMessages, err := s.repos.Message.FindAll()
	if err != nil {
		return nil, err
	}

	sessions := make(map[string]*respond.ChatSessionRespond)

	for i := range allMessages {
		msg := &allMessages[i]
		if msg.SenderId != userId && msg.ReceiverId != userId {
			continue
		}
		// 对端：自己发的取接收者，否则取发送者
		otherUserId := msg.SenderId
		if msg.SenderId == userId {
			otherUserId = msg.ReceiverId
		}
		if otherUserId == "" {
			continue // 广播/房间消息没有对端
		}

		key := sessionKey(userId, otherUserId)
		session, ok := sessions[key]
		if !ok {
			rsp := respond.FromMessage(msg)
			session = &respond.ChatSessionRespond{
				Id:           key,
				Participants: []string{userId, otherUserId},
				LastMessage:  &rsp,
				LastActivity: msg.CreatedAt,
				UnreadCount:  make(map[string]int),
			}
			sessions[key] = session
		} else if msg.CreatedAt.After(session.LastActivity) {
			rsp := respond.FromMessage(msg)
			session.LastMessage = &rsp
			session.LastActivity = msg.CreatedAt
		}

		// 只统计发给当前查看者的未读数
		if msg.SenderId != userId && !msg.ReadAt.Valid {
			session.UnreadCount[userId]++
		}
	}

	result := make([]respond.ChatSessionRespond, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, *session)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastActivity.After(result[j].LastActivity)
	})
	return result, nil
}

// GetUserChatSummary 会话列表映射为摘要
// 对方昵称从用户表查找，查不到时使用 "Unknown User" 兜底；
// IsOnline 这里一律填 false，由实时网关在返回前按 Presence 覆盖
func (s *messageService) GetUserChatSummary(userId string) ([]respond.UserChatSummaryRespond, error) {
	sessions, err := s.GetUserChatSessions(userId)
	if err != nil {
		return nil, err
	}

	allUsers, err := s.repos.User.FindAll()
	if err != nil {
		zap.L().Error("查询用户列表失败", zap.Error(err))
		allUsers = nil
	}
	nameByUuid := make(map[string]string, len(allUsers))
	for i := range allUsers {
		nameByUuid[allUsers[i].Uuid] = allUsers[i].Name
	}

	summaries := make([]respond.UserChatSummaryRespond, 0, len(sessions))
	for _, session := range sessions {
		otherUserId := ""
		for _, p := range session.Participants {
			if p != userId {
				otherUserId = p
				break
			}
		}

		userName, ok := nameByUuid[otherUserId]
		if !ok {
			userName = "Unknown User"
		}

		summary := respond.UserChatSummaryRespond{
			UserId:      otherUserId,
			UserName:    userName,
			UnreadCount: session.UnreadCount[userId],
			IsOnline:    false,
		}
		if session.LastMessage != nil {
			summary.LastMessage = session.LastMessage.Content
			t := session.LastMessage.CreatedAt
			summary.LastMessageTime = &t
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// MarkMessagesAsRead 将 senderId 发给 userId 的未读消息标记已读
// 已读消息直接跳过，重复调用结果一致（幂等）
func (s *messageService) MarkMessagesAsRead(userId, senderId string) error {
	messages, err := s.repos.Message.FindDirect(senderId, userId)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range messages {
		msg := &messages[i]
		if msg.SenderId != senderId || msg.ReadAt.Valid {
			continue
		}
		if err := s.repos.Message.UpdateFields(msg.Uuid, map[string]any{"read_at": now}); err != nil {
			return err
		}
	}
	return nil
}

// GetMessagesWithTimeRange 返回用户参与的、createdAt 在 [start, end] 内的消息
// 两端都取闭区间；start > end 时自然得到空列表，不视为错误
func (s *messageService) GetMessagesWithTimeRange(userId string, start, end time.Time) ([]respond.MessageRespond, error) {
	allMessages, err := s.repos.Message.FindAll()
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Message, 0)
	for i := range allMessages {
		msg := &allMessages[i]
		if msg.SenderId != userId && msg.ReceiverId != userId {
			continue
		}
		if msg.CreatedAt.Before(start) || msg.CreatedAt.After(end) {
			continue
		}
		filtered = append(filtered, *msg)
	}
	sortAscByCreatedAt(filtered)
	return respond.FromMessages(filtered), nil
}

// DeleteMessage 按 ID 删除消息，ID 不存在时为空操作
func (s *messageService) DeleteMessage(messageId string) error {
	return s.repos.Message.DeleteByUuid(messageId)
}
