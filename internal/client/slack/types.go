// Package slack provides a client for Slack chat notifications.
package slack

// postMessageRequest is the payload for the chat.postMessage endpoint.
type postMessageRequest struct {
	Channel   string `json:"channel"`              // 通知频道
	Text      string `json:"text"`                 // 消息内容
	Username  string `json:"username,omitempty"`   // 机器人显示名称
	IconEmoji string `json:"icon_emoji,omitempty"` // 机器人图标
}

// apiResponse is the common Slack API response envelope.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// authTestResponse is the response of the auth.test endpoint.
type authTestResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	User  string `json:"user,omitempty"`
	Team  string `json:"team,omitempty"`
}
