package client

import "testing"

func TestStatusEnglishFallback(t *testing.T) {
	for _, lang := range []string{"en", "fr", "", "not a tag"} {
		s := NewStatus(lang)
		if got := s.Text(StatusRoomID, "1111"); got != "Room: 1111" {
			t.Fatalf("lang %q: expected English room line, got %q", lang, got)
		}
	}
}

func TestStatusChinese(t *testing.T) {
	s := NewStatus("zh-CN")
	if got := s.Text(StatusOpponentLeft); got != "对手已离开" {
		t.Fatalf("expected Chinese opponent left text, got %q", got)
	}
	if got := s.Text(StatusError, "room is full"); got != "错误: room is full" {
		t.Fatalf("expected Chinese error line, got %q", got)
	}
}
