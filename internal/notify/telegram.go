// Package notify delivers alert messages to external channels.
package notify

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender sends messages through the Telegram Bot API. Each
// configured account has its own bot token; actions reference accounts
// by ID so campaigns can fan out to different bots.
type TelegramSender struct {
	endpoint string
	client   tgbotapi.HTTPClient

	mu     sync.Mutex
	tokens map[string]string
	bots   map[string]*tgbotapi.BotAPI
}

// TelegramOption configures TelegramSender.
type TelegramOption func(*TelegramSender)

// WithAPIEndpoint overrides the Bot API endpoint template. The template
// must contain two %s verbs for token and method.
func WithAPIEndpoint(endpoint string) TelegramOption {
	return func(s *TelegramSender) {
		s.endpoint = endpoint
	}
}

// WithTelegramClient sets a custom HTTP client.
func WithTelegramClient(client tgbotapi.HTTPClient) TelegramOption {
	return func(s *TelegramSender) {
		s.client = client
	}
}

// NewTelegramSender creates a sender for the given account tokens,
// keyed by account ID.
func NewTelegramSender(tokens map[string]string, opts ...TelegramOption) *TelegramSender {
	s := &TelegramSender{
		endpoint: tgbotapi.APIEndpoint,
		tokens:   make(map[string]string, len(tokens)),
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
	for id, token := range tokens {
		s.tokens[id] = token
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// bot returns the BotAPI for an account, connecting lazily on first use.
func (s *TelegramSender) bot(accountID string) (*tgbotapi.BotAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bot, ok := s.bots[accountID]; ok {
		return bot, nil
	}

	token, ok := s.tokens[accountID]
	if !ok {
		return nil, fmt.Errorf("unknown telegram account %q", accountID)
	}

	var bot *tgbotapi.BotAPI
	var err error
	if s.client != nil {
		bot, err = tgbotapi.NewBotAPIWithClient(token, s.endpoint, s.client)
	} else {
		bot, err = tgbotapi.NewBotAPIWithAPIEndpoint(token, s.endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("connect telegram account %q: %w", accountID, err)
	}

	s.bots[accountID] = bot
	return bot, nil
}

// Send delivers a message to a chat from the given account's bot.
func (s *TelegramSender) Send(accountID string, chatID int64, message string) error {
	bot, err := s.bot(accountID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, message)
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
