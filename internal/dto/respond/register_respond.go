package respond

// RegisterRespond 注册响应
type RegisterRespond struct {
	Message      string      `json:"message"`
	User         UserRespond `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
}

// UserRespond 用户公开信息
type UserRespond struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
