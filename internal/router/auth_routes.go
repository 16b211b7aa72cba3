// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"tradezone_chat_server/internal/handler"
	"tradezone_chat_server/internal/infrastructure/middleware"
)

// RegisterAuthRoutes 注册认证相关路由
// 用于用户账号和 JWT Token 管理
func RegisterAuthRoutes(r *gin.Engine, h *handler.Handlers) {
	authGroup := r.Group("/auth")
	{
		// POST /auth/register - 注册新用户并签发 Token 对
		authGroup.POST("/register", h.Auth.Register)
		// POST /auth/login - 登录并签发 Token 对
		authGroup.POST("/login", h.Auth.Login)
		// POST /auth/refresh - 用 Refresh Token 换取新 Token 对
		authGroup.POST("/refresh", h.Auth.RefreshToken)
	}

	authedGroup := r.Group("/auth", middleware.JWTAuth())
	{
		// POST /auth/logout - 作废当前用户的 Refresh Token
		authedGroup.POST("/logout", h.Auth.Logout)
	}
}
