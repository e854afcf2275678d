package telegram

import (
	"testing"

	"chatpay/internal/bot"
)

func TestParseEventCommand(t *testing.T) {
	from := &ChatUser{ID: 7, FirstName: "Jane", Username: "jdoe"}
	profile, ev, ok := ParseEvent(Update{Message: &Message{From: from, Text: "/start"}})
	if !ok {
		t.Fatal("expected event")
	}
	if profile.ID != 7 || profile.Handle != "jdoe" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	cmd, isCmd := ev.(bot.Command)
	if !isCmd || cmd.Name != "start" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestParseEventCommandWithMentionAndArgs(t *testing.T) {
	from := &ChatUser{ID: 7}
	for _, text := range []string{"/stats@paybot", "/stats extra args"} {
		_, ev, ok := ParseEvent(Update{Message: &Message{From: from, Text: text}})
		if !ok {
			t.Fatalf("expected event for %q", text)
		}
		cmd, isCmd := ev.(bot.Command)
		if !isCmd || cmd.Name != "stats" {
			t.Fatalf("unexpected event for %q: %#v", text, ev)
		}
	}
}

func TestParseEventFreeText(t *testing.T) {
	from := &ChatUser{ID: 7}
	_, ev, ok := ParseEvent(Update{Message: &Message{From: from, Text: "  49.90  "}})
	if !ok {
		t.Fatal("expected event")
	}
	text, isText := ev.(bot.FreeText)
	if !isText || text.Text != "49.90" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestParseEventContact(t *testing.T) {
	from := &ChatUser{ID: 7}
	_, ev, ok := ParseEvent(Update{Message: &Message{From: from, Contact: &Contact{PhoneNumber: "+123456789"}}})
	if !ok {
		t.Fatal("expected event")
	}
	contact, isContact := ev.(bot.ContactShared)
	if !isContact || contact.Phone != "+123456789" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestParseEventCallback(t *testing.T) {
	profile, ev, ok := ParseEvent(Update{CallbackQuery: &CallbackQuery{
		ID:   "cb-1",
		From: &ChatUser{ID: 7},
		Data: "confirm_yes_11",
	}})
	if !ok {
		t.Fatal("expected event")
	}
	if profile.ID != 7 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	press, isPress := ev.(bot.ButtonPress)
	if !isPress || press.Token != "confirm_yes_11" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestParseEventIgnoresEmptyUpdates(t *testing.T) {
	cases := []Update{
		{},
		{Message: &Message{}},
		{Message: &Message{From: &ChatUser{ID: 7}, Text: "   "}},
	}
	for i, update := range cases {
		if _, _, ok := ParseEvent(update); ok {
			t.Fatalf("case %d: expected no event", i)
		}
	}
}
