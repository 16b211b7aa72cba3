package constants

const (
	CHANNEL_SIZE               = 100 // 通道大小
	LOGIN_QUERY_TIMEOUT        = 5   // 登录查库限时（秒）
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
)
