package services

import (
	"context"
	"fmt"
	"log"

	"asistencia-backend/internal/dashboard"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type chatSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService posts attendance changes to a fixed list of chats
type TelegramService struct {
	bot     chatSender
	chatIDs []int64
}

func NewTelegramService(token string, chatIDs []int64) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %w", err)
	}
	log.Printf("✅ Telegram bot authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot, chatIDs: chatIDs}, nil
}

func (s *TelegramService) Notify(ctx context.Context, ev dashboard.Event) {
	text := telegramText(ev)
	for _, chatID := range s.chatIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			log.Printf("❌ Error sending telegram message to %d: %v", chatID, err)
		}
	}
}

func telegramText(ev dashboard.Event) string {
	return fmt.Sprintf("📋 %s\n👷 %s\n%s\n\n📊 Presentes: %d/%d (%d%%)",
		actionTitle(ev.Action), displayName(ev), ev.Message,
		ev.Stats.Present, ev.Stats.Total, ev.Stats.Percentage)
}
