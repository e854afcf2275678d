package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatpay/internal/bot"
)

func TestClientSendMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(apiResponse{OK: true})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1")
	err := client.Send(context.Background(), bot.Outbound{
		ChatID: 7,
		Text:   "hello",
		Inline: [][]bot.Button{{{Text: "Yes", Data: "confirm_yes_11"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/bottoken-1/sendMessage" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotBody.ChatID != 7 || gotBody.Text != "hello" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	if gotBody.ReplyMarkup == nil || gotBody.ReplyMarkup.InlineKeyboard[0][0].CallbackData != "confirm_yes_11" {
		t.Fatalf("unexpected markup: %+v", gotBody.ReplyMarkup)
	}
}

func TestClientSendAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(apiResponse{OK: false, Description: "chat not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1")
	if err := client.Send(context.Background(), bot.Outbound{ChatID: 7, Text: "hello"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildMarkup(t *testing.T) {
	if buildMarkup(bot.Outbound{Text: "plain"}) != nil {
		t.Fatal("plain message should carry no markup")
	}

	markup := buildMarkup(bot.Outbound{
		Keyboard: [][]bot.Button{{{Text: "Share my number", RequestContact: true}}},
		OneTime:  true,
	})
	if markup == nil || !markup.ResizeKeyboard || !markup.OneTimeKeyboard {
		t.Fatalf("unexpected markup: %+v", markup)
	}
	if !markup.Keyboard[0][0].RequestContact {
		t.Fatalf("request_contact lost: %+v", markup.Keyboard)
	}

	markup = buildMarkup(bot.Outbound{RemoveKeyboard: true})
	if markup == nil || !markup.RemoveKeyboard {
		t.Fatalf("unexpected markup: %+v", markup)
	}
}
