package domain

import "fmt"

// ActionKind discriminates the Action union.
type ActionKind string

const (
	ActionKindBuy          ActionKind = "buy"
	ActionKindSell         ActionKind = "sell"
	ActionKindTelegram     ActionKind = "telegram"
	ActionKindDiscord      ActionKind = "discord"
	ActionKindNotification ActionKind = "notification"
)

// Action is a tagged union: exactly the payload field matching Kind is set.
// A notification action carries no payload; it relies on the scheduler's
// alert_triggered broadcast to reach clients.
type Action struct {
	Kind     ActionKind      `json:"kind"`
	Buy      *BuyAction      `json:"buy,omitempty"`
	Sell     *SellAction     `json:"sell,omitempty"`
	Telegram *TelegramAction `json:"telegram,omitempty"`
	Discord  *DiscordAction  `json:"discord,omitempty"`
}

// BuyAction buys the campaign token with SOL from the given wallet.
type BuyAction struct {
	WalletID      string  `json:"wallet_id"`
	AmountSOL     float64 `json:"amount_sol"`
	SlippageBps   int     `json:"slippage_bps"`
	PriorityLevel string  `json:"priority_level"`
	SkipTax       bool    `json:"skip_tax"`
}

// SellAction sells a percentage of the campaign token holding.
type SellAction struct {
	WalletID      string  `json:"wallet_id"`
	Percentage    float64 `json:"percentage"`
	SlippageBps   int     `json:"slippage_bps"`
	PriorityLevel string  `json:"priority_level"`
	SkipTax       bool    `json:"skip_tax"`
}

// TelegramAction sends a message through a configured Telegram account.
// Message overrides the generated trigger summary when non-empty.
type TelegramAction struct {
	AccountID string `json:"account_id"`
	ChatID    int64  `json:"chat_id"`
	Message   string `json:"message,omitempty"`
}

// DiscordAction posts a JSON payload to a Discord webhook.
type DiscordAction struct {
	WebhookURL string `json:"webhook_url"`
	Message    string `json:"message,omitempty"`
}

// NotificationAction returns the broadcast-only action.
func NotificationAction() Action {
	return Action{Kind: ActionKindNotification}
}

// Validate checks that the payload matching Kind is present and well formed.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionKindBuy:
		if a.Buy == nil {
			return fmt.Errorf("buy action: missing payload")
		}
		if a.Buy.WalletID == "" {
			return fmt.Errorf("buy action: wallet_id is required")
		}
		if a.Buy.AmountSOL <= 0 {
			return fmt.Errorf("buy action: amount_sol must be positive")
		}
	case ActionKindSell:
		if a.Sell == nil {
			return fmt.Errorf("sell action: missing payload")
		}
		if a.Sell.WalletID == "" {
			return fmt.Errorf("sell action: wallet_id is required")
		}
		if a.Sell.Percentage <= 0 || a.Sell.Percentage > 100 {
			return fmt.Errorf("sell action: percentage must be in (0, 100]")
		}
	case ActionKindTelegram:
		if a.Telegram == nil {
			return fmt.Errorf("telegram action: missing payload")
		}
		if a.Telegram.AccountID == "" {
			return fmt.Errorf("telegram action: account_id is required")
		}
		if a.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram action: chat_id is required")
		}
	case ActionKindDiscord:
		if a.Discord == nil {
			return fmt.Errorf("discord action: missing payload")
		}
		if a.Discord.WebhookURL == "" {
			return fmt.Errorf("discord action: webhook_url is required")
		}
	case ActionKindNotification:
		// no payload
	default:
		return fmt.Errorf("unknown action kind: %q", a.Kind)
	}
	return nil
}

// ActionOutcome is the per-action execution result reported by the
// action executor. A failed action never suppresses its siblings.
type ActionOutcome struct {
	Kind    ActionKind `json:"kind"`
	Success bool       `json:"success"`
	Detail  string     `json:"detail,omitempty"` // signature, message id, etc.
	Error   string     `json:"error,omitempty"`
}
