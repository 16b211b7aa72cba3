// Package handler 提供 HTTP 请求处理器
// 本文件处理认证相关的 API 请求
package handler

import (
	"tradezone_chat_server/internal/dto/request"
	"tradezone_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register 用户注册
// POST /auth/register
// 请求体: request.RegisterRequest
// 响应: respond.RegisterRespond（含 Access/Refresh Token 对）
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userService.Register(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Login 用户登录
// POST /auth/login
// 请求体: request.LoginRequest
// 用户查询带 5 秒限时保护，数据库挂起时返回 CodeDBTimeout 而非无限等待
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userService.Login(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RefreshToken 刷新 Token 对
// POST /auth/refresh
// 请求体: request.RefreshTokenRequest
//
// 单点互踢机制:
//   - 登录/刷新时在 Redis 中存储最新 Token ID
//   - 使用旧 Token ID 刷新时会被拒绝
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Logout 注销当前用户
// POST /auth/logout（需要登录态）
// 删除 Redis 中登记的 Refresh Token ID，旧 Refresh Token 不再可用
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.GetString("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"message": "注销成功"})
}
