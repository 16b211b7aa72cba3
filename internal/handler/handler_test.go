package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
	"tradezone_chat_server/internal/handler"
	"tradezone_chat_server/internal/http_server"
	"tradezone_chat_server/internal/service"
	"tradezone_chat_server/internal/service/chat"
	"tradezone_chat_server/pkg/errorx"
	"tradezone_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

type stubUserService struct{}

func (s stubUserService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	return &respond.RegisterRespond{Message: "注册成功", User: respond.UserRespond{Id: "U1"}}, nil
}
func (s stubUserService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{Message: "登录成功", User: respond.UserRespond{Id: "U1"}}, nil
}
func (s stubUserService) RefreshToken(refreshToken string) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{Message: "刷新成功"}, nil
}
func (s stubUserService) Logout(userUuid string) error { return nil }
func (s stubUserService) GetUserInfo(uuid string) (*respond.UserRespond, error) {
	return &respond.UserRespond{Id: uuid, Name: "张三"}, nil
}

type stubMessageService struct {
	failAll bool
}

func (s stubMessageService) CreateMessage(senderId string, req request.CreateMessageRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{Id: "m1", Content: req.Content, SenderId: senderId}, nil
}
func (s stubMessageService) GetAllMessages() ([]respond.MessageRespond, error) {
	if s.failAll {
		return nil, errorx.New(errorx.CodeStoreUnavailable, "存储不可用")
	}
	return []respond.MessageRespond{{Id: "m1"}}, nil
}
func (s stubMessageService) GetMessagesByUser(userId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (s stubMessageService) GetMessagesByRoom(roomId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (s stubMessageService) GetDirectMessages(userOneId, userTwoId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (s stubMessageService) GetUserChatSessions(userId string) ([]respond.ChatSessionRespond, error) {
	return []respond.ChatSessionRespond{}, nil
}
func (s stubMessageService) GetUserChatSummary(userId string) ([]respond.UserChatSummaryRespond, error) {
	return []respond.UserChatSummaryRespond{{UserId: "UB", UserName: "李四"}}, nil
}
func (s stubMessageService) MarkMessagesAsRead(userId, senderId string) error { return nil }
func (s stubMessageService) GetMessagesWithTimeRange(userId string, start, end time.Time) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (s stubMessageService) DeleteMessage(messageId string) error { return nil }

func newTestEngine(t *testing.T, msgSvc service.MessageService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret-0123456789abcdef", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans failed: %v", err)
	}

	services := &service.Services{User: stubUserService{}, Message: msgSvc}
	hub := chat.NewHub(msgSvc)
	handlers := handler.NewHandlers(services, hub)
	return http_server.Init(handlers)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestRegisterEndpoint(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	w, env := doRequest(t, engine, http.MethodPost, "/auth/register", "", request.RegisterRequest{
		Name: "张三", Email: "a@b.com", Password: "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env.Code != errorx.CodeSuccess {
		t.Errorf("expected success code, got %d", env.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	// 密码太短，validator 拦截
	_, env := doRequest(t, engine, http.MethodPost, "/auth/register", "", request.RegisterRequest{
		Name: "张三", Email: "a@b.com", Password: "123",
	})
	if env.Code != errorx.CodeInvalidParam {
		t.Errorf("expected CodeInvalidParam, got %d", env.Code)
	}
}

func TestGetAllMessagesOpen(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	w, env := doRequest(t, engine, http.MethodGet, "/chat/messages", "", nil)
	if w.Code != http.StatusOK || env.Code != errorx.CodeSuccess {
		t.Fatalf("expected open success, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestGetAllMessagesDegradesToEmptyList(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{failAll: true})

	w, env := doRequest(t, engine, http.MethodGet, "/chat/messages", "", nil)
	if w.Code != http.StatusOK || env.Code != errorx.CodeSuccess {
		t.Fatalf("store failure must degrade to success envelope, got status=%d code=%d", w.Code, env.Code)
	}
	var data []respond.MessageRespond
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data must be a list: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty list on degradation, got %d items", len(data))
	}
}

func TestCreateMessageRequiresAuth(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	w, _ := doRequest(t, engine, http.MethodPost, "/chat/message", "", request.CreateMessageRequest{Content: "你好"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, err := jwt.GenerateAccessToken("U1")
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	w, env := doRequest(t, engine, http.MethodPost, "/chat/message", token, request.CreateMessageRequest{Content: "你好"})
	if w.Code != http.StatusOK || env.Code != errorx.CodeSuccess {
		t.Fatalf("expected success with token, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	w, _ := doRequest(t, engine, http.MethodPost, "/auth/logout", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, _ := jwt.GenerateAccessToken("U1")
	w, env := doRequest(t, engine, http.MethodPost, "/auth/logout", token, nil)
	if w.Code != http.StatusOK || env.Code != errorx.CodeSuccess {
		t.Fatalf("expected logout success with token, got status=%d code=%d", w.Code, env.Code)
	}
}

func TestGetSummaryWithAuth(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	token, _ := jwt.GenerateAccessToken("UA")
	w, env := doRequest(t, engine, http.MethodGet, "/chat/summary", token, nil)
	if w.Code != http.StatusOK || env.Code != errorx.CodeSuccess {
		t.Fatalf("expected summary success, got status=%d code=%d", w.Code, env.Code)
	}
	var data []respond.UserChatSummaryRespond
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("summary data must decode: %v", err)
	}
	if len(data) != 1 || data[0].IsOnline {
		t.Errorf("expected one offline summary entry, got %+v", data)
	}
}

func TestWsHandshakeRejectsMissingToken(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})

	w, env := doRequest(t, engine, http.MethodGet, "/ws", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("handshake rejection uses 200 envelope, got %d", w.Code)
	}
	if env.Code != errorx.CodeUnauthenticated {
		t.Errorf("expected CodeUnauthenticated, got %d", env.Code)
	}
}

func TestTimeRangeValidation(t *testing.T) {
	engine := newTestEngine(t, stubMessageService{})
	token, _ := jwt.GenerateAccessToken("UA")

	// 缺少查询参数
	_, env := doRequest(t, engine, http.MethodGet, "/chat/time-range", token, nil)
	if env.Code != errorx.CodeInvalidParam {
		t.Errorf("expected CodeInvalidParam for missing params, got %d", env.Code)
	}

	// 格式错误
	_, env = doRequest(t, engine, http.MethodGet, "/chat/time-range?startTime=abc&endTime=def", token, nil)
	if env.Code != errorx.CodeInvalidParam {
		t.Errorf("expected CodeInvalidParam for bad time format, got %d", env.Code)
	}

	// 正常查询
	_, env = doRequest(t, engine, http.MethodGet,
		"/chat/time-range?startTime=2025-06-01T00:00:00Z&endTime=2025-06-02T00:00:00Z", token, nil)
	if env.Code != errorx.CodeSuccess {
		t.Errorf("expected success for valid range, got %d", env.Code)
	}
}
