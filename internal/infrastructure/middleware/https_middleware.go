package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS
func TlsHandler(host string, port int) gin.HandlerFunc {
	// 在返回函数之前初始化，避免每次请求都重复创建对象
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect: true,
		SSLHost:     host + ":" + strconv.Itoa(port),
	})

	return func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			// 中间件里不能用 Fatal，记录错误并终止当前请求即可
			zap.L().Error("TLS redirection failed", zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
