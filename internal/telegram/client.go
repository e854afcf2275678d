package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatpay/internal/bot"
)

// Client is a thin sender over the Bot API. It implements bot.Messenger.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type keyboardButton struct {
	Text           string `json:"text"`
	RequestContact bool   `json:"request_contact,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard  [][]inlineButton   `json:"inline_keyboard,omitempty"`
	Keyboard        [][]keyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	RemoveKeyboard  bool               `json:"remove_keyboard,omitempty"`
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) Send(ctx context.Context, out bot.Outbound) error {
	req := sendMessageRequest{
		ChatID:      out.ChatID,
		Text:        out.Text,
		ReplyMarkup: buildMarkup(out),
	}
	return c.call(ctx, "sendMessage", req)
}

// AnswerCallback acknowledges a button press so the client stops showing a
// spinner. Failures are harmless.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]string{
		"callback_query_id": callbackID,
	})
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	var parsed apiResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s: %s", method, parsed.Description)
	}
	return nil
}

func buildMarkup(out bot.Outbound) *replyMarkup {
	switch {
	case len(out.Inline) > 0:
		rows := make([][]inlineButton, 0, len(out.Inline))
		for _, row := range out.Inline {
			buttons := make([]inlineButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, inlineButton{Text: b.Text, CallbackData: b.Data})
			}
			rows = append(rows, buttons)
		}
		return &replyMarkup{InlineKeyboard: rows}
	case len(out.Keyboard) > 0:
		rows := make([][]keyboardButton, 0, len(out.Keyboard))
		for _, row := range out.Keyboard {
			buttons := make([]keyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, keyboardButton{Text: b.Text, RequestContact: b.RequestContact})
			}
			rows = append(rows, buttons)
		}
		return &replyMarkup{Keyboard: rows, ResizeKeyboard: true, OneTimeKeyboard: out.OneTime}
	case out.RemoveKeyboard:
		return &replyMarkup{RemoveKeyboard: true}
	}
	return nil
}
