package chat

import (
	"encoding/json"
	"testing"
	"time"

	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
	"tradezone_chat_server/pkg/errorx"
)

// fakeMessageService 测试用的 MessageService 替身
type fakeMessageService struct {
	failCreate bool
	created    []request.CreateMessageRequest
}

func (f *fakeMessageService) CreateMessage(senderId string, req request.CreateMessageRequest) (*respond.MessageRespond, error) {
	if f.failCreate {
		return nil, errorx.New(errorx.CodeStoreUnavailable, "存储不可用")
	}
	f.created = append(f.created, req)
	return &respond.MessageRespond{
		Id:          "m1",
		Content:     req.Content,
		SenderId:    senderId,
		ReceiverId:  req.ReceiverId,
		RoomId:      req.RoomId,
		MessageType: "text",
		CreatedAt:   time.Now(),
	}, nil
}

func (f *fakeMessageService) GetAllMessages() ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (f *fakeMessageService) GetMessagesByUser(userId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (f *fakeMessageService) GetMessagesByRoom(roomId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (f *fakeMessageService) GetDirectMessages(userOneId, userTwoId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (f *fakeMessageService) GetUserChatSessions(userId string) ([]respond.ChatSessionRespond, error) {
	return []respond.ChatSessionRespond{}, nil
}
func (f *fakeMessageService) GetUserChatSummary(userId string) ([]respond.UserChatSummaryRespond, error) {
	return []respond.UserChatSummaryRespond{{UserId: "UB", UserName: "李四"}}, nil
}
func (f *fakeMessageService) MarkMessagesAsRead(userId, senderId string) error { return nil }
func (f *fakeMessageService) GetMessagesWithTimeRange(userId string, start, end time.Time) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (f *fakeMessageService) DeleteMessage(messageId string) error { return nil }

// newTestConn 构造一条已登记的测试连接（不经过真实 websocket）
func newTestConn(hub *Hub, connId, userId, userName string) *UserConn {
	client := &UserConn{
		ConnId:   connId,
		UserId:   userId,
		UserName: userName,
		SendBack: make(chan []byte, 32),
	}
	hub.Clients.Store(connId, client)
	hub.Presence.Register(PresenceEntry{ConnId: connId, UserId: userId, UserName: userName})
	return client
}

// drainEvents 取出连接收到的所有帧并解析事件名
func drainEvents(t *testing.T, client *UserConn) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case frame := <-client.SendBack:
			var ev Event
			if err := json.Unmarshal(frame, &ev); err != nil {
				t.Fatalf("invalid frame: %v", err)
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	return names
}

func hasEvent(events []Event, name string) bool {
	for _, ev := range events {
		if ev.Event == name {
			return true
		}
	}
	return false
}

func TestHandleSendMessageDirectFanout(t *testing.T) {
	svc := &fakeMessageService{}
	hub := NewHub(svc)

	senderMain := newTestConn(hub, "c1", "UA", "张三")
	senderOther := newTestConn(hub, "c2", "UA", "张三") // 同一用户的第二台设备
	receiver := newTestConn(hub, "c3", "UB", "李四")
	bystander := newTestConn(hub, "c4", "UC", "王五")

	payload, _ := json.Marshal(request.CreateMessageRequest{Content: "你好", ReceiverId: "UB"})
	hub.handleSendMessage(senderMain, payload)

	senderEvents := drainEvents(t, senderMain)
	if !hasEvent(senderEvents, EventMessageSent) {
		t.Errorf("sender must receive messageSent ack, got %v", eventNames(senderEvents))
	}
	if !hasEvent(senderEvents, EventNewMessage) {
		t.Errorf("sender must receive newMessage echo, got %v", eventNames(senderEvents))
	}

	// 回显只给发出消息的那条连接，其他设备不收
	if events := drainEvents(t, senderOther); len(events) != 0 {
		t.Errorf("sender's other device must not receive anything, got %v", eventNames(events))
	}
	if events := drainEvents(t, receiver); !hasEvent(events, EventNewMessage) {
		t.Errorf("receiver must receive newMessage, got %v", eventNames(events))
	}
	if events := drainEvents(t, bystander); len(events) != 0 {
		t.Errorf("bystander must not receive direct message, got %v", eventNames(events))
	}
	if len(svc.created) != 1 {
		t.Fatalf("message must be persisted exactly once, got %d", len(svc.created))
	}
}

func TestHandleSendMessageStoreFailure(t *testing.T) {
	svc := &fakeMessageService{failCreate: true}
	hub := NewHub(svc)

	sender := newTestConn(hub, "c1", "UA", "张三")
	receiver := newTestConn(hub, "c2", "UB", "李四")

	payload, _ := json.Marshal(request.CreateMessageRequest{Content: "你好", ReceiverId: "UB"})
	hub.handleSendMessage(sender, payload)

	senderEvents := drainEvents(t, sender)
	if !hasEvent(senderEvents, EventError) {
		t.Fatalf("sender must receive error on store failure, got %v", eventNames(senderEvents))
	}
	var errPayload ErrorPayload
	for _, ev := range senderEvents {
		if ev.Event == EventError {
			_ = json.Unmarshal(ev.Data, &errPayload)
		}
	}
	if errPayload.Code != errorx.CodeStoreUnavailable {
		t.Errorf("expected CodeStoreUnavailable, got %d", errPayload.Code)
	}

	// 持久化失败时不做任何分发
	if events := drainEvents(t, receiver); len(events) != 0 {
		t.Errorf("receiver must not get anything when store fails, got %v", eventNames(events))
	}
}

func TestRoomJoinLeaveAndFanout(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	alice := newTestConn(hub, "c1", "UA", "张三")
	bob := newTestConn(hub, "c2", "UB", "李四")
	carol := newTestConn(hub, "c3", "UC", "王五")

	roomPayload, _ := json.Marshal(RoomPayload{RoomId: "room1"})
	hub.handleJoinRoom(alice, roomPayload)
	hub.handleJoinRoom(bob, roomPayload)

	// bob 加入时 alice 收到 userJoinedRoom
	if events := drainEvents(t, alice); !hasEvent(events, EventUserJoinedRoom) {
		t.Errorf("alice must see bob joining, got %v", eventNames(events))
	}
	drainEvents(t, bob)

	// 房间消息：alice 和 bob 收到，carol 收不到
	msgPayload, _ := json.Marshal(request.CreateMessageRequest{Content: "大家好", RoomId: "room1"})
	hub.handleSendMessage(alice, msgPayload)

	if events := drainEvents(t, alice); !hasEvent(events, EventNewMessage) {
		t.Errorf("room sender must receive newMessage, got %v", eventNames(events))
	}
	if events := drainEvents(t, bob); !hasEvent(events, EventNewMessage) {
		t.Errorf("room member must receive newMessage, got %v", eventNames(events))
	}
	if events := drainEvents(t, carol); len(events) != 0 {
		t.Errorf("non-member must not receive room message, got %v", eventNames(events))
	}

	// bob 离开后不再收到房间消息
	hub.handleLeaveRoom(bob, roomPayload)
	drainEvents(t, alice)
	drainEvents(t, bob)

	hub.handleSendMessage(alice, msgPayload)
	if events := drainEvents(t, bob); len(events) != 0 {
		t.Errorf("left member must not receive room message, got %v", eventNames(events))
	}

	// 重复离开是空操作
	hub.handleLeaveRoom(bob, roomPayload)
	if events := drainEvents(t, bob); len(events) != 0 {
		t.Errorf("duplicate leave must be a no-op, got %v", eventNames(events))
	}
}

func TestHandleFrameUnauthenticated(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	// 连接存在但未登记 Presence
	stray := &UserConn{ConnId: "c9", UserId: "UX", SendBack: make(chan []byte, 8)}
	hub.Clients.Store("c9", stray)

	data, _ := json.Marshal(Event{Event: EventGetOnlineUsers})
	hub.handleFrame(InboundFrame{ConnId: "c9", Data: data})

	events := drainEvents(t, stray)
	if !hasEvent(events, EventError) {
		t.Fatalf("unregistered connection must get error, got %v", eventNames(events))
	}
	var errPayload ErrorPayload
	_ = json.Unmarshal(events[0].Data, &errPayload)
	if errPayload.Code != errorx.CodeUnauthenticated {
		t.Errorf("expected CodeUnauthenticated, got %d", errPayload.Code)
	}
}

func TestHandleTypingExcludesSelf(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	alice := newTestConn(hub, "c1", "UA", "张三")
	bob := newTestConn(hub, "c2", "UB", "李四")

	payload, _ := json.Marshal(TypingPayload{ReceiverId: "UB", IsTyping: true})
	hub.handleTyping(alice, payload)

	if events := drainEvents(t, alice); len(events) != 0 {
		t.Errorf("typing must not echo to self, got %v", eventNames(events))
	}
	events := drainEvents(t, bob)
	if !hasEvent(events, EventUserTyping) {
		t.Fatalf("receiver must get userTyping, got %v", eventNames(events))
	}
	var tp TypingBroadcastPayload
	_ = json.Unmarshal(events[0].Data, &tp)
	if tp.UserId != "UA" || !tp.IsTyping {
		t.Errorf("unexpected typing payload: %+v", tp)
	}
}

func TestHandleTypingNoTargetDropped(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	alice := newTestConn(hub, "c1", "UA", "张三")
	bob := newTestConn(hub, "c2", "UB", "李四")

	payload, _ := json.Marshal(TypingPayload{IsTyping: true})
	hub.handleTyping(alice, payload)

	// 既无接收者也无房间的输入状态不做任何分发
	if events := drainEvents(t, bob); len(events) != 0 {
		t.Errorf("typing without a target must be dropped, got %v", eventNames(events))
	}
	if events := drainEvents(t, alice); len(events) != 0 {
		t.Errorf("sender must not get anything back, got %v", eventNames(events))
	}
}

func TestLoginAnnouncesToAllConnections(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	alice := newTestConn(hub, "c1", "UA", "张三")
	bob := &UserConn{ConnId: "c2", UserId: "UB", UserName: "李四", SendBack: make(chan []byte, 32)}
	hub.handleLogin(bob)

	if events := drainEvents(t, alice); !hasEvent(events, EventUserOnline) {
		t.Errorf("existing connection must see userOnline, got %v", eventNames(events))
	}

	bobEvents := drainEvents(t, bob)
	if !hasEvent(bobEvents, EventUserOnline) {
		t.Errorf("new connection must see its own userOnline, got %v", eventNames(bobEvents))
	}
	if !hasEvent(bobEvents, EventOnlineUsers) {
		t.Errorf("new connection must get the online list, got %v", eventNames(bobEvents))
	}

	var pp PresencePayload
	for _, ev := range bobEvents {
		if ev.Event == EventUserOnline {
			_ = json.Unmarshal(ev.Data, &pp)
		}
	}
	if pp.UserId != "UB" || pp.ConnectionId != "c2" {
		t.Errorf("userOnline must carry userId and connectionId, got %+v", pp)
	}
}

func TestLogoutBeforeLoginDiscardsConnection(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	client := &UserConn{ConnId: "c1", UserId: "UA", UserName: "张三", SendBack: make(chan []byte, 8)}

	// 连接升级后立刻断开：读协程的登出事件可能先于登录事件被消费
	hub.handleLogout(client)
	hub.handleLogin(client)

	if hub.Presence.IsOnline("UA") {
		t.Error("connection that already logged out must not be registered online")
	}
	if hub.GetClient("c1") != nil {
		t.Error("discarded connection must not stay in the client table")
	}
	select {
	case _, open := <-client.SendBack:
		if open {
			t.Error("discarded connection's send channel must be closed")
		}
	default:
		t.Error("discarded connection's send channel must be closed")
	}

	// 墓碑一次性生效，同一连接 ID 之后的正常登录不受影响
	fresh := &UserConn{ConnId: "c1", UserId: "UA", UserName: "张三", SendBack: make(chan []byte, 8)}
	hub.handleLogin(fresh)
	if !hub.Presence.IsOnline("UA") {
		t.Error("a later login with the same conn id must register normally")
	}
}

func TestBroadcastSystemMessage(t *testing.T) {
	hub := NewHub(&fakeMessageService{})

	alice := newTestConn(hub, "c1", "UA", "张三")
	bob := newTestConn(hub, "c2", "UB", "李四")

	hub.BroadcastSystemMessage("系统维护通知")

	for _, client := range []*UserConn{alice, bob} {
		events := drainEvents(t, client)
		if !hasEvent(events, EventSystemMessage) {
			t.Fatalf("all clients must get systemMessage, got %v", eventNames(events))
		}
		var sp SystemMessagePayload
		_ = json.Unmarshal(events[0].Data, &sp)
		if sp.Content != "系统维护通知" {
			t.Errorf("unexpected system message content: %s", sp.Content)
		}
	}
}
