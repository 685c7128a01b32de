package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestNotifySendsPhotoMessage(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "@channel")
	n.baseURL = srv.URL

	err := n.Notify(context.Background(), Notification{
		Title:    "Pokemon Box",
		ImageURL: "https://img.example/box.jpg",
		Price:    floatPtr(18.98),
		URL:      "https://www.amazon.it/dp/B0ABC123",
		Source:   "Amazon",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotPath != "/botTOKEN/sendPhoto" {
		t.Errorf("path = %q; want /botTOKEN/sendPhoto", gotPath)
	}
	if gotBody.Photo != "https://img.example/box.jpg" {
		t.Errorf("photo = %q", gotBody.Photo)
	}
	if !strings.Contains(gotBody.Caption, "18.98") || !strings.Contains(gotBody.Caption, "Amazon") {
		t.Errorf("caption = %q", gotBody.Caption)
	}
	if gotBody.ReplyMarkup == nil || len(gotBody.ReplyMarkup.InlineKeyboard) != 2 {
		t.Errorf("reply markup = %+v", gotBody.ReplyMarkup)
	}
}

func TestNotifyFallsBackToTextMessage(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "@channel")
	n.baseURL = srv.URL

	err := n.Notify(context.Background(), Notification{
		Title:  "Pokemon Box",
		Price:  floatPtr(18.98),
		URL:    "https://www.amazon.it/dp/B0ABC123",
		Source: "Amazon",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q; want /botTOKEN/sendMessage", gotPath)
	}
}

func TestNotifyRejectsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "@missing")
	n.baseURL = srv.URL

	err := n.Notify(context.Background(), Notification{
		Title:  "Pokemon Box",
		URL:    "https://www.amazon.it/dp/B0ABC123",
		Source: "Amazon",
	})
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("Notify err = %v; want API rejection", err)
	}
}

func TestNotifyRejectsInvalidProductURL(t *testing.T) {
	n := NewTelegramNotifier("TOKEN", "@channel")
	err := n.Notify(context.Background(), Notification{Title: "X", URL: "not a url"})
	if err == nil {
		t.Fatal("Notify accepted an invalid product URL")
	}
}
