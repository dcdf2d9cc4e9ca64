package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/models"

	"firebase.google.com/go/v4/messaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func sampleEvent() dashboard.Event {
	return dashboard.Event{
		Type:    dashboard.EventSnapshotUpdated,
		Action:  "entrada",
		Cedula:  "100",
		Nombre:  "Ana",
		Message: "Entrada registrada: 08:15:30",
		Date:    "2025-03-14",
		Stats:   models.Stats{Total: 3, Present: 1, Percentage: 33},
	}
}

type fakeFCM struct {
	sent []*messaging.Message
	err  error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "projects/x/messages/1", f.err
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, f.err
}

// ============================================================
// FCM
// ============================================================

func TestFCMNotifySendsToTopic(t *testing.T) {
	fake := &fakeFCM{}
	s := &FCMService{client: fake, topic: "asistencia"}
	s.Notify(context.Background(), sampleEvent())

	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.sent))
	}
	m := fake.sent[0]
	if m.Topic != "asistencia" || m.Token != "" {
		t.Fatalf("message should target the topic: %+v", m)
	}
	if m.Notification.Title != "Entrada registrada" || !strings.Contains(m.Notification.Body, "Ana (100)") {
		t.Fatalf("unexpected notification: %+v", m.Notification)
	}
	if m.Data["presentes"] != "1" || m.Data["porcentaje"] != "33" {
		t.Fatalf("unexpected data: %v", m.Data)
	}
}

func TestFCMNotifySwallowsErrors(t *testing.T) {
	s := &FCMService{client: &fakeFCM{err: errors.New("quota")}, topic: "t"}
	s.Notify(context.Background(), sampleEvent())
}

// ============================================================
// Telegram
// ============================================================

func TestTelegramNotifyEveryChat(t *testing.T) {
	bot := &fakeBot{}
	s := &TelegramService{bot: bot, chatIDs: []int64{1, 2}}
	s.Notify(context.Background(), sampleEvent())

	if len(bot.sent) != 2 || bot.sent[0].ChatID != 1 || bot.sent[1].ChatID != 2 {
		t.Fatalf("unexpected sends: %+v", bot.sent)
	}
	if !strings.Contains(bot.sent[0].Text, "Presentes: 1/3 (33%)") {
		t.Fatalf("unexpected text: %q", bot.sent[0].Text)
	}
}

func TestTelegramStopsOnCancelledContext(t *testing.T) {
	bot := &fakeBot{}
	s := &TelegramService{bot: bot, chatIDs: []int64{1, 2}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Notify(ctx, sampleEvent())
	if len(bot.sent) != 0 {
		t.Fatalf("expected no sends, got %d", len(bot.sent))
	}
}

// ============================================================
// Async
// ============================================================

type chanNotifier chan dashboard.Event

func (c chanNotifier) Notify(ctx context.Context, ev dashboard.Event) {
	if _, ok := ctx.Deadline(); !ok {
		panic("async notifier should set a deadline")
	}
	c <- ev
}

func TestAsyncOutlivesRequestContext(t *testing.T) {
	ch := make(chanNotifier, 1)
	ctx, cancel := context.WithCancel(context.Background())
	Async(ch, time.Second).Notify(ctx, sampleEvent())
	cancel()

	select {
	case ev := <-ch:
		if ev.Cedula != "100" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async notifier never ran")
	}
}
