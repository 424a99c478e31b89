package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBot_SendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	bot := NewBot("TOKEN123", "chat-9").WithBaseURL(srv.URL)
	if err := bot.SendMessage(context.Background(), "📊 日报"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if gotPath != "/botTOKEN123/sendMessage" {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody["chat_id"] != "chat-9" || gotBody["text"] != "📊 日报" {
		t.Errorf("body = %v", gotBody)
	}
	if gotBody["parse_mode"] != "Markdown" {
		t.Errorf("parse_mode = %s, want Markdown", gotBody["parse_mode"])
	}
}

func TestBot_SendMessageRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"description":"Unauthorized"}`))
	}))
	defer srv.Close()

	bot := NewBot("bad", "chat").WithBaseURL(srv.URL)
	if err := bot.SendMessage(context.Background(), "x"); err == nil {
		t.Fatal("接口拒绝时应返回错误")
	}
}
