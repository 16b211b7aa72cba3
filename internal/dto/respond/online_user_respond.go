package respond

// OnlineUserRespond 在线用户条目（按连接计，同一用户多端登录会出现多条）
type OnlineUserRespond struct {
	UserId       string `json:"userId"`
	UserName     string `json:"userName"`
	ConnectionId string `json:"connectionId"`
}
