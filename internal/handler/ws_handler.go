// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"tradezone_chat_server/internal/service"
	"tradezone_chat_server/internal/service/chat"
	"tradezone_chat_server/pkg/errorx"
	"tradezone_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 握手处理器
type WsHandler struct {
	userService service.UserService
	hub         *chat.Hub
}

// NewWsHandler 创建 WsHandler 实例
func NewWsHandler(userService service.UserService, hub *chat.Hub) *WsHandler {
	return &WsHandler{userService: userService, hub: hub}
}

// WsLogin WebSocket 登录（升级 HTTP 连接为 WebSocket）
// GET /ws?token=xxx
// 查询参数: token - Access Token（浏览器 WebSocket API 无法设置请求头）
// 功能:
//   - 校验 Token 并解析用户身份
//   - 将 HTTP 连接升级为 WebSocket 连接并注册到 Hub
//   - 开始监听消息收发
func (h *WsHandler) WsLogin(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeUnauthenticated,
			"msg":  "缺少 token 参数",
		})
		return
	}

	claims, err := jwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		zap.L().Warn("ws握手token校验失败", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeUnauthenticated,
			"msg":  "无效的 token",
		})
		return
	}

	// 解析用户昵称，查不到时用 UserID 兜底（不阻断连接）
	userName := claims.UserID
	if info, err := h.userService.GetUserInfo(claims.UserID); err == nil {
		userName = info.Name
	}

	chat.NewClientInit(c, h.hub, claims.UserID, userName)
}
