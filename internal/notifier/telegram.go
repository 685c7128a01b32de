package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TelegramNotifier posts product alerts to a channel through the Bot API.
type TelegramNotifier struct {
	token   string
	chatID  string
	client  *http.Client
	baseURL string
}

// NewTelegramNotifier creates a notifier for the given bot token and
// channel ID.
func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: "https://api.telegram.org",
	}
}

type inlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]inlineKeyboardButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string                `json:"chat_id"`
	Text        string                `json:"text,omitempty"`
	Photo       string                `json:"photo,omitempty"`
	Caption     string                `json:"caption,omitempty"`
	ParseMode   string                `json:"parse_mode"`
	ReplyMarkup *inlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify implements Notifier. Products with a usable image URL go out as
// a photo message with the text as caption, others as a plain message.
func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) error {
	if !validURL(n.URL) {
		return fmt.Errorf("telegram: invalid product url %q", n.URL)
	}

	price := "n/d"
	if n.Price != nil {
		price = fmt.Sprintf("%.2f", *n.Price)
	}
	text := fmt.Sprintf("<b>%s</b>\n\n👉🏼 %s€ da <b>%s</b>\n\n", n.Title, price, n.Source)

	markup := &inlineKeyboardMarkup{
		InlineKeyboard: [][]inlineKeyboardButton{
			{{Text: "🛒 Apri " + n.Source + " 🛒", URL: n.URL}},
		},
	}
	shareURL := "https://t.me/share/url?url=" + url.QueryEscape(n.URL) + "&text=" + url.QueryEscape(n.Title)
	markup.InlineKeyboard = append(markup.InlineKeyboard,
		[]inlineKeyboardButton{{Text: "📤 Condividi 📤", URL: shareURL}})

	req := sendMessageRequest{
		ChatID:      t.chatID,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	}
	method := "sendMessage"
	if validURL(n.ImageURL) {
		method = "sendPhoto"
		req.Photo = n.ImageURL
		req.Caption = text
	} else {
		req.Text = text
	}

	return t.call(ctx, method, req)
}

func (t *TelegramNotifier) call(ctx context.Context, method string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram: %s rejected: %s", method, apiResp.Description)
	}
	return nil
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}
