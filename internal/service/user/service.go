// Package user 提供用户注册/登录/Token 管理的业务逻辑
package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradezone_chat_server/internal/dao/mysql"
	"tradezone_chat_server/internal/dao/redis"
	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/dto/respond"
	"tradezone_chat_server/internal/model"
	"tradezone_chat_server/pkg/constants"
	"tradezone_chat_server/pkg/errorx"
	"tradezone_chat_server/pkg/util/jwt"
	"tradezone_chat_server/pkg/util/snowflake"
)

// userService UserService 的实现
type userService struct {
	repos *mysql.Repositories
	cache redis.CacheService
}

// NewUserService 构造函数
func NewUserService(repos *mysql.Repositories, cache redis.CacheService) *userService {
	return &userService{repos: repos, cache: cache}
}

// refreshTokenKey Redis 中保存 Refresh Token ID 的键
func refreshTokenKey(userUuid string) string {
	return "user_token:" + userUuid
}

// issueTokenPair 签发 Access/Refresh Token 对
// Refresh Token ID 写入 Redis，旧 Token 随之失效（单点互踢）
func (s *userService) issueTokenPair(userUuid string) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.GenerateAccessToken(userUuid)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "生成 Access Token 失败")
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(userUuid)
	if err != nil {
		return "", "", errorx.Wrap(err, errorx.CodeServerBusy, "生成 Refresh Token 失败")
	}
	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err = s.cache.Set(context.Background(), refreshTokenKey(userUuid), tokenID, ttl); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Register 注册新用户并签发 Token 对
func (s *userService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	existing, err := s.repos.User.FindByEmail(req.Email)
	if err != nil && !errorx.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, errorx.New(errorx.CodeUserExist, "该邮箱已被注册")
	}

	newUser := model.UserInfo{
		Uuid:        "U" + snowflake.GenerateIDString(),
		Name:        req.Name,
		Email:       req.Email,
		RawPassword: req.Password,
	}
	if err := s.repos.User.Create(&newUser); err != nil {
		zap.L().Error("创建用户失败", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	accessToken, refreshToken, err := s.issueTokenPair(newUser.Uuid)
	if err != nil {
		return nil, err
	}

	return &respond.RegisterRespond{
		Message: "注册成功",
		User: respond.UserRespond{
			Id:    newUser.Uuid,
			Name:  newUser.Name,
			Email: newUser.Email,
		},
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// findUserGuarded 带限时保护的用户查询
// 数据库查询挂起超过限定秒数时返回 CodeDBTimeout，而不是让登录请求无限等待
func (s *userService) findUserGuarded(email string) (*model.UserInfo, error) {
	type result struct {
		user *model.UserInfo
		err  error
	}
	done := make(chan result, 1)
	go func() {
		u, err := s.repos.User.FindByEmail(email)
		done <- result{user: u, err: err}
	}()

	select {
	case r := <-done:
		return r.user, r.err
	case <-time.After(constants.LOGIN_QUERY_TIMEOUT * time.Second):
		zap.L().Warn("登录查询超时", zap.String("email", email))
		return nil, errorx.New(errorx.CodeDBTimeout, "数据库查询超时，请稍后重试")
	}
}

// Login 校验凭证并签发 Token 对
func (s *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	foundUser, err := s.findUserGuarded(req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			// 不暴露邮箱是否存在
			return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
		}
		return nil, err
	}
	if !foundUser.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
	}

	accessToken, refreshToken, err := s.issueTokenPair(foundUser.Uuid)
	if err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Message: "登录成功",
		User: respond.UserRespond{
			Id:    foundUser.Uuid,
			Name:  foundUser.Name,
			Email: foundUser.Email,
		},
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 校验 Refresh Token 并轮换 Token 对
// Token ID 必须与 Redis 中记录的一致，旧 Refresh Token 用过即废
func (s *userService) RefreshToken(refreshToken string) (*respond.LoginRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthenticated, "无效的 Refresh Token")
	}
	if claims.Subject != "refresh_token" || claims.TokenID == "" {
		return nil, errorx.New(errorx.CodeUnauthenticated, "无效的 Refresh Token")
	}

	storedTokenID, err := s.cache.GetOrError(context.Background(), refreshTokenKey(claims.UserID))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUnauthenticated, "Refresh Token 已失效")
	}
	if storedTokenID != claims.TokenID {
		return nil, errorx.New(errorx.CodeUnauthenticated, "Refresh Token 已被轮换")
	}

	foundUser, err := s.repos.User.FindByUuid(claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}

	accessToken, newRefreshToken, err := s.issueTokenPair(foundUser.Uuid)
	if err != nil {
		return nil, err
	}

	return &respond.LoginRespond{
		Message: "刷新成功",
		User: respond.UserRespond{
			Id:    foundUser.Uuid,
			Name:  foundUser.Name,
			Email: foundUser.Email,
		},
		Token:        accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout 注销：删除 Redis 中的 Refresh Token ID
// 已签发的 Refresh Token 随之失效，Access Token 到期后整个会话结束
func (s *userService) Logout(userUuid string) error {
	return s.cache.Delete(context.Background(), refreshTokenKey(userUuid))
}

// GetUserInfo 获取用户公开信息
func (s *userService) GetUserInfo(uuid string) (*respond.UserRespond, error) {
	foundUser, err := s.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}
	return &respond.UserRespond{
		Id:    foundUser.Uuid,
		Name:  foundUser.Name,
		Email: foundUser.Email,
	}, nil
}
