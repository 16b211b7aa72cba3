package user

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tradezone_chat_server/internal/dao/mysql"
	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/model"
	"tradezone_chat_server/pkg/errorx"
	"tradezone_chat_server/pkg/util/jwt"
)

// fakeUserRepo 内存版 UserRepository，模拟 BeforeSave 的密码哈希行为
type fakeUserRepo struct {
	users []model.UserInfo
}

func (r *fakeUserRepo) Create(user *model.UserInfo) error {
	if user.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.RawPassword), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.Password = string(hash)
		user.RawPassword = ""
	}
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	for i := range r.users {
		if r.users[i].Uuid == uuid {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.UserInfo, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}

func (r *fakeUserRepo) FindAll() ([]model.UserInfo, error) {
	out := make([]model.UserInfo, len(r.users))
	copy(out, r.users)
	return out, nil
}

// fakeCache 内存版 CacheService
type fakeCache struct {
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.store[key] = value
	return nil
}

func (c *fakeCache) GetOrError(ctx context.Context, key string) (string, error) {
	v, ok := c.store[key]
	if !ok {
		return "", errorx.New(errorx.CodeCacheError, "键不存在")
	}
	return v, nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func newTestService() (*userService, *fakeUserRepo, *fakeCache) {
	jwt.Init("test-secret-0123456789abcdef", 15, 168)
	repo := &fakeUserRepo{}
	cache := newFakeCache()
	svc := NewUserService(&mysql.Repositories{User: repo}, cache)
	return svc, repo, cache
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo, cache := newTestService()

	rsp, err := svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if rsp.Token == "" || rsp.RefreshToken == "" {
		t.Error("register must issue a token pair")
	}
	if rsp.User.Id == "" || rsp.User.Id[0] != 'U' {
		t.Errorf("user uuid must start with U, got %q", rsp.User.Id)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
	if repo.users[0].Password == "secret123" || repo.users[0].Password == "" {
		t.Error("password must be stored hashed")
	}
	if _, ok := cache.store["user_token:"+rsp.User.Id]; !ok {
		t.Error("refresh token id must be stored in cache")
	}

	login, err := svc.Login(request.LoginRequest{Email: "a@b.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.Id != rsp.User.Id {
		t.Errorf("login user mismatch: %s != %s", login.User.Id, rsp.User.Id)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.Register(request.RegisterRequest{Name: "李四", Email: "a@b.com", Password: "other456"})
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	if code := errorx.GetCode(err); code != errorx.CodeUserExist {
		t.Errorf("expected CodeUserExist, got %d", code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	_, _ = svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"})

	// 密码错误
	_, err := svc.Login(request.LoginRequest{Email: "a@b.com", Password: "wrong"})
	if code := errorx.GetCode(err); code != errorx.CodeInvalidPassword {
		t.Errorf("expected CodeInvalidPassword for wrong password, got %d", code)
	}

	// 邮箱不存在：同样返回密码错误，不暴露账号是否存在
	_, err = svc.Login(request.LoginRequest{Email: "nobody@b.com", Password: "secret123"})
	if code := errorx.GetCode(err); code != errorx.CodeInvalidPassword {
		t.Errorf("expected CodeInvalidPassword for unknown email, got %d", code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, _ := newTestService()

	rsp, err := svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(rsp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.Token == "" || refreshed.RefreshToken == "" {
		t.Error("refresh must issue a new token pair")
	}

	// 旧 Refresh Token 已被轮换，再用应被拒绝
	_, err = svc.RefreshToken(rsp.RefreshToken)
	if code := errorx.GetCode(err); code != errorx.CodeUnauthenticated {
		t.Errorf("expected CodeUnauthenticated for rotated token, got %d", code)
	}

	// 新 Token 可以继续轮换
	if _, err := svc.RefreshToken(refreshed.RefreshToken); err != nil {
		t.Errorf("new refresh token must work: %v", err)
	}
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	svc, _, cache := newTestService()

	rsp, err := svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Logout(rsp.User.Id); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := cache.store["user_token:"+rsp.User.Id]; ok {
		t.Error("logout must remove the cached refresh token id")
	}

	// 注销后 Refresh Token 作废
	_, err = svc.RefreshToken(rsp.RefreshToken)
	if code := errorx.GetCode(err); code != errorx.CodeUnauthenticated {
		t.Errorf("expected CodeUnauthenticated after logout, got %d", code)
	}

	// 重复注销是空操作
	if err := svc.Logout(rsp.User.Id); err != nil {
		t.Errorf("duplicate logout must be a no-op: %v", err)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestService()
	rsp, _ := svc.Register(request.RegisterRequest{Name: "张三", Email: "a@b.com", Password: "secret123"})

	_, err := svc.RefreshToken(rsp.Token)
	if code := errorx.GetCode(err); code != errorx.CodeUnauthenticated {
		t.Errorf("access token must not pass refresh, got code %d", code)
	}
}
