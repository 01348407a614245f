package client

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Status message keys. The keys double as the English text.
const (
	StatusConnecting         = "Connecting to server..."
	StatusCreatingRoom       = "Connected, creating room..."
	StatusJoiningRoom        = "Connected, joining room..."
	StatusConnectFailed      = "Connection failed, make sure the relay is running"
	StatusWaitingForOpponent = "Waiting for another player to join..."
	StatusJoinedWaiting      = "Joined room, waiting for the game to start..."
	StatusOpponentJoined     = "Opponent joined, the game is about to start..."
	StatusOpponentLeft       = "Opponent left"
	StatusDisconnected       = "Disconnected from server"
	StatusError              = "Error: %s"
	StatusRoomID             = "Room: %s"
)

var chineseStatus = map[string]string{
	StatusConnecting:         "正在连接服务器...",
	StatusCreatingRoom:       "已连接，正在创建房间...",
	StatusJoiningRoom:        "已连接，正在加入房间...",
	StatusConnectFailed:      "连接失败，请确保服务器已启动",
	StatusWaitingForOpponent: "等待其他玩家加入...",
	StatusJoinedWaiting:      "已加入房间，等待游戏开始...",
	StatusOpponentJoined:     "对手已加入，游戏即将开始...",
	StatusOpponentLeft:       "对手已离开",
	StatusDisconnected:       "与服务器断开连接",
	StatusError:              "错误: %s",
	StatusRoomID:             "房间号: %s",
}

func init() {
	for key, text := range chineseStatus {
		message.SetString(language.Chinese, key, text)
	}
}

// Status renders user-facing status lines in one language.
type Status struct {
	printer *message.Printer
}

var supportedLanguages = language.NewMatcher([]language.Tag{language.English, language.Chinese})

// NewStatus picks the closest supported language for lang, falling back to
// English.
func NewStatus(lang string) *Status {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		matched, _, _ := supportedLanguages.Match(parsed)
		base, _ := matched.Base()
		if base.String() == "zh" {
			tag = language.Chinese
		}
	}
	return &Status{printer: message.NewPrinter(tag)}
}

func (s *Status) Text(key string, args ...any) string {
	return s.printer.Sprintf(key, args...)
}
