package reminders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roomly/backend/pkg/queue"
)

func TestTelegramClientSend(t *testing.T) {
	t.Run("posts chat id and text", func(t *testing.T) {
		var gotPath, gotChatID, gotText string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			gotChatID = r.PostFormValue("chat_id")
			gotText = r.PostFormValue("text")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		client := NewTelegramClient("test-token")
		client.baseURL = srv.URL
		if err := client.Send(context.Background(), 42, "hello"); err != nil {
			t.Fatalf("send: %v", err)
		}
		if gotPath != "/bottest-token/sendMessage" {
			t.Errorf("path = %q", gotPath)
		}
		if gotChatID != "42" {
			t.Errorf("chat_id = %q, want 42", gotChatID)
		}
		if gotText != "hello" {
			t.Errorf("text = %q", gotText)
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"ok":false}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewTelegramClient("test-token")
		client.baseURL = srv.URL
		if err := client.Send(context.Background(), 42, "hello"); err == nil {
			t.Fatal("expected error for 400 response")
		}
	})
}

func TestFormatReminder(t *testing.T) {
	d := &DueBooking{
		RoomName: "Boardroom",
		StartAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		EndAt:    time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC),
	}
	got := FormatReminder(d)
	for _, want := range []string{"Boardroom", "10:00", "11:30"} {
		if !strings.Contains(got, want) {
			t.Errorf("message %q missing %q", got, want)
		}
	}
}

func TestSenderProcessRejectsBadJobs(t *testing.T) {
	s := NewSender(nil, nil, nil, nil)

	t.Run("unknown job type", func(t *testing.T) {
		job := &queue.Job{ID: uuid.New().String(), Type: "mystery"}
		if err := s.Process(context.Background(), job); err == nil {
			t.Fatal("expected error for unknown job type")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		job := &queue.Job{
			ID:      uuid.New().String(),
			Type:    queue.JobTypeReminder,
			Payload: json.RawMessage(`{not json`),
		}
		if err := s.Process(context.Background(), job); err == nil {
			t.Fatal("expected error for malformed payload")
		}
	})
}
