package respond

// LoginRespond 登录响应
type LoginRespond struct {
	Message      string      `json:"message"`
	User         UserRespond `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}
