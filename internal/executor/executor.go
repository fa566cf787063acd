// Package executor runs the side effects of a fired alert. Every action
// executes independently: one dead webhook never blocks a sell order.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/idhash"
	"solana-price-sentinel/internal/observability"
	"solana-price-sentinel/internal/storage"
	"solana-price-sentinel/internal/trade"
)

// DefaultDispatchTimeout bounds the whole action list of one firing.
const DefaultDispatchTimeout = 60 * time.Second

// TelegramSender sends a message from a configured bot account.
type TelegramSender interface {
	Send(accountID string, chatID int64, message string) error
}

// DiscordPoster posts a message to a webhook URL.
type DiscordPoster interface {
	Post(ctx context.Context, webhookURL, message string) error
}

// Executor dispatches a fired alert's actions and writes the audit record.
type Executor struct {
	trades   trade.Executor
	telegram TelegramSender
	discord  DiscordPoster
	wallets  storage.WalletStore
	history  storage.TriggerHistoryStore
	logger   *log.Logger
	timeout  time.Duration
}

// Options contains configuration for creating an Executor. Nil channel
// collaborators disable the matching action kind: its actions then fail
// with a logged outcome instead of panicking.
type Options struct {
	Trades   trade.Executor
	Telegram TelegramSender
	Discord  DiscordPoster
	Wallets  storage.WalletStore
	History  storage.TriggerHistoryStore
	Timeout  time.Duration // Default: 60s for the whole action list
	Logger   *log.Logger
}

// New creates an action executor.
func New(opts Options) *Executor {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultDispatchTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Executor{
		trades:   opts.Trades,
		telegram: opts.Telegram,
		discord:  opts.Discord,
		wallets:  opts.Wallets,
		history:  opts.History,
		logger:   logger,
		timeout:  timeout,
	}
}

// Dispatch handles one fired alert end to end. Called by the scheduler
// in its own goroutine, so it may block on external I/O freely.
func (e *Executor) Dispatch(ev *domain.TriggerEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.Execute(ctx, ev)
}

// Execute writes the trigger history record, then runs every action in
// order and returns the per-action outcomes. The history write happens
// before dispatch so the audit trail survives even if an action crashes
// the process; a failed write is logged, not fatal.
func (e *Executor) Execute(ctx context.Context, ev *domain.TriggerEvent) []domain.ActionOutcome {
	e.appendHistory(ctx, ev)

	outcomes := make([]domain.ActionOutcome, 0, len(ev.Alert.Actions))
	for _, action := range ev.Alert.Actions {
		outcome := e.runAction(ctx, ev, action)
		observability.RecordAction(string(action.Kind), outcome.Success)
		if outcome.Success {
			e.logger.Printf("action %s succeeded for alert %s: %s", action.Kind, ev.Alert.ID[:8], outcome.Detail)
		} else {
			e.logger.Printf("action %s failed for alert %s: %s", action.Kind, ev.Alert.ID[:8], outcome.Error)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// runAction executes a single action, never panicking past siblings.
func (e *Executor) runAction(ctx context.Context, ev *domain.TriggerEvent, action domain.Action) (outcome domain.ActionOutcome) {
	outcome.Kind = action.Kind
	defer func() {
		if r := recover(); r != nil {
			outcome.Success = false
			outcome.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	switch action.Kind {
	case domain.ActionKindBuy:
		return e.runBuy(ctx, ev, action.Buy)
	case domain.ActionKindSell:
		return e.runSell(ctx, ev, action.Sell)
	case domain.ActionKindTelegram:
		return e.runTelegram(ev, action.Telegram)
	case domain.ActionKindDiscord:
		return e.runDiscord(ctx, ev, action.Discord)
	case domain.ActionKindNotification:
		// The scheduler's alert_triggered broadcast already reached
		// clients; nothing to do here.
		outcome.Success = true
		outcome.Detail = "broadcast"
		return outcome
	default:
		outcome.Error = fmt.Sprintf("unknown action kind %q", action.Kind)
		return outcome
	}
}

func (e *Executor) runBuy(ctx context.Context, ev *domain.TriggerEvent, a *domain.BuyAction) domain.ActionOutcome {
	outcome := domain.ActionOutcome{Kind: domain.ActionKindBuy}
	if e.trades == nil {
		outcome.Error = "trade executor not configured"
		return outcome
	}

	wallet, err := e.resolveWallet(ctx, a.WalletID)
	if err != nil {
		outcome.Error = fmt.Sprintf("resolve wallet %s: %v", a.WalletID, err)
		return outcome
	}

	result := e.trades.Buy(ctx, trade.BuyOrder{
		WalletAddress: wallet.Address,
		TokenMint:     ev.TokenMint,
		AmountSOL:     a.AmountSOL,
		SlippageBps:   a.SlippageBps,
		Priority:      trade.PriorityLevel(a.PriorityLevel),
		SkipTax:       a.SkipTax,
	})
	return tradeOutcome(domain.ActionKindBuy, result)
}

func (e *Executor) runSell(ctx context.Context, ev *domain.TriggerEvent, a *domain.SellAction) domain.ActionOutcome {
	outcome := domain.ActionOutcome{Kind: domain.ActionKindSell}
	if e.trades == nil {
		outcome.Error = "trade executor not configured"
		return outcome
	}

	wallet, err := e.resolveWallet(ctx, a.WalletID)
	if err != nil {
		outcome.Error = fmt.Sprintf("resolve wallet %s: %v", a.WalletID, err)
		return outcome
	}

	result := e.trades.Sell(ctx, trade.SellOrder{
		WalletAddress: wallet.Address,
		TokenMint:     ev.TokenMint,
		Percentage:    a.Percentage,
		SlippageBps:   a.SlippageBps,
		Priority:      trade.PriorityLevel(a.PriorityLevel),
		SkipTax:       a.SkipTax,
	})
	return tradeOutcome(domain.ActionKindSell, result)
}

func (e *Executor) runTelegram(ev *domain.TriggerEvent, a *domain.TelegramAction) domain.ActionOutcome {
	outcome := domain.ActionOutcome{Kind: domain.ActionKindTelegram}
	if e.telegram == nil {
		outcome.Error = "telegram sender not configured"
		return outcome
	}

	message := a.Message
	if message == "" {
		message = TriggerMessage(ev)
	}
	if err := e.telegram.Send(a.AccountID, a.ChatID, message); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Success = true
	outcome.Detail = fmt.Sprintf("sent to chat %d", a.ChatID)
	return outcome
}

func (e *Executor) runDiscord(ctx context.Context, ev *domain.TriggerEvent, a *domain.DiscordAction) domain.ActionOutcome {
	outcome := domain.ActionOutcome{Kind: domain.ActionKindDiscord}
	if e.discord == nil {
		outcome.Error = "discord notifier not configured"
		return outcome
	}

	message := a.Message
	if message == "" {
		message = TriggerMessage(ev)
	}
	if err := e.discord.Post(ctx, a.WebhookURL, message); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Success = true
	outcome.Detail = "webhook delivered"
	return outcome
}

func (e *Executor) resolveWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	if e.wallets == nil {
		return nil, fmt.Errorf("wallet store not configured")
	}
	return e.wallets.GetByID(ctx, walletID)
}

func tradeOutcome(kind domain.ActionKind, result *trade.Result) domain.ActionOutcome {
	outcome := domain.ActionOutcome{Kind: kind}
	if result.Success {
		outcome.Success = true
		outcome.Detail = result.Signature
	} else if result.Err != nil {
		outcome.Error = result.Err.Error()
	} else {
		outcome.Error = "trade failed"
	}
	return outcome
}

// appendHistory writes the immutable audit row for this firing.
func (e *Executor) appendHistory(ctx context.Context, ev *domain.TriggerEvent) {
	if e.history == nil {
		return
	}

	actionsJSON, err := json.Marshal(ev.Alert.Actions)
	if err != nil {
		e.logger.Printf("marshal actions for alert %s: %v", ev.Alert.ID, err)
		actionsJSON = []byte("[]")
	}

	record := &domain.TriggerRecord{
		TriggerID:     idhash.ComputeTriggerID(ev.CampaignID, ev.Alert.ID, ev.FiredAt),
		CampaignID:    ev.CampaignID,
		AlertID:       ev.Alert.ID,
		TokenMint:     ev.TokenMint,
		PoolAddress:   ev.PoolAddress,
		PriceSOL:      ev.PriceSOL,
		PriceUSD:      ev.PriceUSD,
		ChangePercent: ev.ChangePercent,
		Condition:     FormatCondition(ev.Alert),
		ActionsJSON:   string(actionsJSON),
		FiredAt:       ev.FiredAt,
	}

	err = e.history.Append(ctx, record)
	observability.RecordHistoryWrite(err)
	if err != nil {
		e.logger.Printf("append trigger history for alert %s: %v", ev.Alert.ID, err)
	}
}

// FormatCondition renders an alert's condition as text for the audit log.
func FormatCondition(a *domain.Alert) string {
	switch a.PriceType {
	case domain.PriceTypePercentage:
		return fmt.Sprintf("%s %.2f%% from baseline", a.Direction, a.Target)
	case domain.PriceTypeExactSOL:
		return fmt.Sprintf("%s %.12g SOL", a.Direction, a.Target)
	case domain.PriceTypeExactUSD:
		return fmt.Sprintf("%s %.12g USD", a.Direction, a.Target)
	default:
		return fmt.Sprintf("%s %.12g", a.Direction, a.Target)
	}
}

// TriggerMessage builds the default notification text for a firing.
func TriggerMessage(ev *domain.TriggerEvent) string {
	msg := fmt.Sprintf("Price alert triggered\nToken: %s\nCondition: %s\nPrice: %.12g SOL",
		ev.TokenMint, FormatCondition(ev.Alert), ev.PriceSOL)
	if ev.PriceUSD != nil {
		msg += fmt.Sprintf(" ($%.6g)", *ev.PriceUSD)
	}
	msg += fmt.Sprintf("\nChange: %+.2f%%", ev.ChangePercent)
	return msg
}
