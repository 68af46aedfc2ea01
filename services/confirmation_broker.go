// services/confirmation_broker.go
package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"web3-dashboard/chain"
	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Confirmer asks the user whether a delegation request may proceed.
type Confirmer interface {
	Confirm(ctx context.Context, network models.Network, data models.DelegationConfirmationData) (bool, error)
}

// BrokerEvent is pushed to stream subscribers.
type BrokerEvent struct {
	Type   string                  `json:"type"` // prompt | resolved
	Prompt models.DelegationPrompt `json:"prompt"`
}

type pendingConfirmation struct {
	prompt   models.DelegationPrompt
	decision chan bool
	expired  chan struct{}
	decided  bool
}

// ConfirmationBroker presents delegation prompts to the dashboard and waits
// for the user's answer. Every prompt is decided exactly once; a timeout or
// a cancelled caller counts as a decline.
type ConfirmationBroker struct {
	Timeout time.Duration
	Logger  *zap.Logger

	mu          sync.Mutex
	pending     map[string]*pendingConfirmation
	subscribers map[chan BrokerEvent]struct{}
	metrics     *Metrics
	printer     *message.Printer
	now         func() time.Time
}

func NewConfirmationBroker(timeout time.Duration, metrics *Metrics, logger *zap.Logger) *ConfirmationBroker {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ConfirmationBroker{
		Timeout:     timeout,
		Logger:      logger,
		pending:     make(map[string]*pendingConfirmation),
		subscribers: make(map[chan BrokerEvent]struct{}),
		metrics:     metrics,
		printer:     message.NewPrinter(language.English),
		now:         time.Now,
	}
}

// formatBalance groups the integer part of a decimal balance string.
// Values that are not plain decimals are returned unchanged.
func (b *ConfirmationBroker) formatBalance(balance string) string {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(balance), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || n < 0 {
		return balance
	}
	out := b.printer.Sprintf("%d", n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

func (b *ConfirmationBroker) buildPrompt(network models.Network, data models.DelegationConfirmationData) models.DelegationPrompt {
	now := b.now().UTC()
	balance := b.formatBalance(data.UserTokenBalance)
	msg := fmt.Sprintf(
		"Wallet Address: %s (%s)\nToken Balance: %s %s\nBackend Public Address: %s (%s)\n\nWould you like to delegate your work to the above backend address?",
		chain.ShortAddress(data.UserWalletAddress), data.UserWalletAddress,
		balance, data.Token,
		chain.ShortAddress(data.BackendPublicAddress), data.BackendPublicAddress,
	)
	return models.DelegationPrompt{
		RequestID:                 data.RequestID,
		Network:                   network,
		WalletAddress:             data.UserWalletAddress,
		WalletAddressShort:        chain.ShortAddress(data.UserWalletAddress),
		TokenBalance:              balance,
		Token:                     data.Token,
		BackendPublicAddress:      data.BackendPublicAddress,
		BackendPublicAddressShort: chain.ShortAddress(data.BackendPublicAddress),
		Message:                   msg,
		State:                     models.DelegationPresented,
		PresentedAt:               now,
		ExpiresAt:                 now.Add(b.Timeout),
	}
}

// Confirm presents the prompt and blocks until it is decided, the broker
// timeout passes, or ctx ends.
func (b *ConfirmationBroker) Confirm(ctx context.Context, network models.Network, data models.DelegationConfirmationData) (bool, error) {
	if strings.TrimSpace(data.RequestID) == "" {
		return false, &ValidationError{Message: "Missing requestId"}
	}

	p := &pendingConfirmation{
		prompt:   b.buildPrompt(network, data),
		decision: make(chan bool, 1),
		expired:  make(chan struct{}),
	}

	b.mu.Lock()
	if _, exists := b.pending[data.RequestID]; exists {
		b.mu.Unlock()
		return false, &ConflictError{Message: "Delegation request is already awaiting a decision"}
	}
	b.pending[data.RequestID] = p
	b.metrics.pending(len(b.pending))
	b.broadcastLocked(BrokerEvent{Type: "prompt", Prompt: p.prompt})
	b.mu.Unlock()

	b.Logger.Info("🤝 [DELEGATION] Prompt presented",
		zap.String("request_id", data.RequestID),
		zap.String("network", string(network)),
		zap.String("wallet", p.prompt.WalletAddressShort),
		zap.String("backend", p.prompt.BackendPublicAddressShort))

	timer := time.NewTimer(b.Timeout)
	defer timer.Stop()

	var (
		confirmed bool
		reason    string
	)
	select {
	case confirmed = <-p.decision:
		reason = "user"
	case <-timer.C:
		reason = "timeout"
	case <-p.expired:
		reason = "timeout"
	case <-ctx.Done():
		reason = "cancelled"
	}

	confirmed, reason = b.resolve(data.RequestID, p, confirmed, reason)
	return confirmed, nil
}

// resolve removes the prompt and announces the final state. A decision
// accepted by Decide just before a timeout still wins.
func (b *ConfirmationBroker) resolve(requestID string, p *pendingConfirmation, confirmed bool, reason string) (bool, string) {
	b.mu.Lock()
	if reason != "user" {
		select {
		case confirmed = <-p.decision:
			reason = "user"
		default:
		}
	}
	delete(b.pending, requestID)
	p.decided = true
	p.prompt.State = models.DelegationDeclined
	if confirmed {
		p.prompt.State = models.DelegationConfirmed
	}
	b.broadcastLocked(BrokerEvent{Type: "resolved", Prompt: p.prompt})
	b.metrics.pending(len(b.pending))
	b.mu.Unlock()

	decision := "declined"
	if confirmed {
		decision = "confirmed"
	}
	if reason != "user" {
		decision = reason
	}
	b.metrics.decision(decision)
	b.Logger.Info("🤝 [DELEGATION] Prompt resolved",
		zap.String("request_id", requestID),
		zap.Bool("confirmed", confirmed),
		zap.String("reason", reason))
	return confirmed, reason
}

// Decide records the user's answer. A second answer for the same request
// is a ConflictError.
func (b *ConfirmationBroker) Decide(requestID string, confirmed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[requestID]
	if !ok {
		return &NotFoundError{Message: "Delegation request not found"}
	}
	if p.decided {
		return &ConflictError{Message: "Delegation request was already decided"}
	}
	p.decided = true
	p.decision <- confirmed
	return nil
}

// Pending lists undecided prompts, oldest first.
func (b *ConfirmationBroker) Pending() []models.DelegationPrompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingLocked()
}

func (b *ConfirmationBroker) pendingLocked() []models.DelegationPrompt {
	out := make([]models.DelegationPrompt, 0, len(b.pending))
	for _, p := range b.pending {
		if !p.decided {
			out = append(out, p.prompt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PresentedAt.Before(out[j].PresentedAt) })
	return out
}

// ExpireStale declines prompts past their deadline that no waiter has
// resolved. It returns how many were expired.
func (b *ConfirmationBroker) ExpireStale() int {
	now := b.now().UTC()

	b.mu.Lock()
	defer b.mu.Unlock()

	expired := 0
	for _, p := range b.pending {
		if !p.decided && now.After(p.prompt.ExpiresAt) {
			p.decided = true
			close(p.expired)
			expired++
		}
	}
	return expired
}

// Subscribe returns a channel of prompt events and its cancel func.
func (b *ConfirmationBroker) Subscribe() (<-chan BrokerEvent, func()) {
	ch, _, cancel := b.subscribe(false)
	return ch, cancel
}

// SubscribeWithBacklog is Subscribe plus the prompts pending at the moment
// of subscribing. A prompt is either in the backlog or on the channel,
// never both.
func (b *ConfirmationBroker) SubscribeWithBacklog() (<-chan BrokerEvent, []models.DelegationPrompt, func()) {
	return b.subscribe(true)
}

func (b *ConfirmationBroker) subscribe(withBacklog bool) (<-chan BrokerEvent, []models.DelegationPrompt, func()) {
	ch := make(chan BrokerEvent, 16)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	var backlog []models.DelegationPrompt
	if withBacklog {
		backlog = b.pendingLocked()
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, backlog, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// broadcastLocked drops events for subscribers that are not keeping up.
func (b *ConfirmationBroker) broadcastLocked(ev BrokerEvent) {
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			b.Logger.Warn("⚠️ [DELEGATION] Dropping event for slow subscriber", zap.String("request_id", ev.Prompt.RequestID))
		}
	}
}

// ListPending is GET /api/delegations/pending.
func (b *ConfirmationBroker) ListPending(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"delegations": b.Pending()})
}

// PostDecision is POST /api/delegations/:requestId/decision {confirmed}.
func (b *ConfirmationBroker) PostDecision(c *fiber.Ctx) error {
	var input struct {
		Confirmed *bool `json:"confirmed"`
	}
	if err := c.BodyParser(&input); err != nil || input.Confirmed == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid confirmed field"})
	}

	requestID := c.Params("requestId")
	if err := b.Decide(requestID, *input.Confirmed); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "requestId": requestID, "confirmed": *input.Confirmed})
}

// StreamSSE is GET /api/delegations/stream. Pending prompts are replayed
// first, then prompt and resolved events follow as they happen.
func (b *ConfirmationBroker) StreamSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, backlog, cancel := b.SubscribeWithBacklog()
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		w.WriteString(":\n\n")
		for _, prompt := range backlog {
			writeSSE(w, BrokerEvent{Type: "prompt", Prompt: prompt})
		}
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				writeSSE(w, ev)
				if err := w.Flush(); err != nil {
					// client disconnected
					return
				}
			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})

	return nil
}

func writeSSE(w *bufio.Writer, ev BrokerEvent) {
	payload, _ := json.Marshal(ev.Prompt)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
}
