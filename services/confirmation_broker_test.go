package services

import (
	"context"
	"testing"
	"time"

	"web3-dashboard/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testDelegationData(requestID string) models.DelegationConfirmationData {
	return models.DelegationConfirmationData{
		RequestID:            requestID,
		UserWalletAddress:    "0x1234567890abcdef1234567890abcdef12345678",
		UserTokenBalance:     "1234567.25",
		Token:                "APL",
		BackendPublicAddress: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
	}
}

type confirmOutcome struct {
	confirmed bool
	err       error
}

func confirmAsync(b *ConfirmationBroker, data models.DelegationConfirmationData) <-chan confirmOutcome {
	out := make(chan confirmOutcome, 1)
	go func() {
		confirmed, err := b.Confirm(context.Background(), models.NetworkSepolia, data)
		out <- confirmOutcome{confirmed, err}
	}()
	return out
}

func waitPending(t *testing.T, b *ConfirmationBroker, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(b.Pending()) == n }, time.Second, time.Millisecond)
}

func TestBrokerPromptMessage(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	prompt := b.buildPrompt(models.NetworkSaga, testDelegationData("r1"))

	assert.Equal(t, "1,234,567.25", prompt.TokenBalance)
	assert.Equal(t, "0x1234...5678", prompt.WalletAddressShort)
	assert.Equal(t, "0xabcd...abcd", prompt.BackendPublicAddressShort)
	assert.Equal(t, models.DelegationPresented, prompt.State)
	assert.Equal(t,
		"Wallet Address: 0x1234...5678 (0x1234567890abcdef1234567890abcdef12345678)\n"+
			"Token Balance: 1,234,567.25 APL\n"+
			"Backend Public Address: 0xabcd...abcd (0xabcdefabcdefabcdefabcdefabcdefabcdefabcd)\n\n"+
			"Would you like to delegate your work to the above backend address?",
		prompt.Message)
	assert.Equal(t, time.Minute, prompt.ExpiresAt.Sub(prompt.PresentedAt))
}

func TestBrokerFormatBalanceKeepsNonNumeric(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	assert.Equal(t, "n/a", b.formatBalance("n/a"))
	assert.Equal(t, "999", b.formatBalance("999"))
}

func TestBrokerDecideOnce(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	events, cancel := b.Subscribe()
	defer cancel()

	result := confirmAsync(b, testDelegationData("r1"))
	waitPending(t, b, 1)

	ev := <-events
	assert.Equal(t, "prompt", ev.Type)
	assert.Equal(t, "r1", ev.Prompt.RequestID)

	require.NoError(t, b.Decide("r1", true))

	outcome := <-result
	require.NoError(t, outcome.err)
	assert.True(t, outcome.confirmed)

	ev = <-events
	assert.Equal(t, "resolved", ev.Type)
	assert.Equal(t, models.DelegationConfirmed, ev.Prompt.State)

	var notFound *NotFoundError
	assert.ErrorAs(t, b.Decide("r1", false), &notFound)
	assert.Empty(t, b.Pending())
}

func TestBrokerSecondDecisionConflicts(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	b.mu.Lock()
	b.pending["r1"] = &pendingConfirmation{decision: make(chan bool, 1)}
	b.mu.Unlock()

	require.NoError(t, b.Decide("r1", false))
	var conflict *ConflictError
	assert.ErrorAs(t, b.Decide("r1", true), &conflict)
}

func TestBrokerDuplicateRequestConflicts(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	first := confirmAsync(b, testDelegationData("r1"))
	waitPending(t, b, 1)

	_, err := b.Confirm(context.Background(), models.NetworkSepolia, testDelegationData("r1"))
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	require.NoError(t, b.Decide("r1", false))
	outcome := <-first
	assert.False(t, outcome.confirmed)
}

func TestBrokerTimeoutDeclines(t *testing.T) {
	b := NewConfirmationBroker(20*time.Millisecond, nil, zap.NewNop())

	confirmed, err := b.Confirm(context.Background(), models.NetworkSepolia, testDelegationData("r1"))
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Empty(t, b.Pending())
}

func TestBrokerCancelledCallerDeclines(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	confirmed, err := b.Confirm(ctx, models.NetworkSepolia, testDelegationData("r1"))
	require.NoError(t, err)
	assert.False(t, confirmed)
}

func TestBrokerRequiresRequestID(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	_, err := b.Confirm(context.Background(), models.NetworkSepolia, testDelegationData(""))
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBrokerExpireStale(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	result := confirmAsync(b, testDelegationData("r1"))
	waitPending(t, b, 1)

	assert.Zero(t, b.ExpireStale())

	b.mu.Lock()
	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	b.mu.Unlock()
	assert.Equal(t, 1, b.ExpireStale())

	outcome := <-result
	require.NoError(t, outcome.err)
	assert.False(t, outcome.confirmed)
}

func TestBrokerExpireStaleCountsAsTimeout(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	b := NewConfirmationBroker(time.Minute, metrics, zap.NewNop())
	result := confirmAsync(b, testDelegationData("r1"))
	waitPending(t, b, 1)

	b.mu.Lock()
	b.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	b.mu.Unlock()
	require.Equal(t, 1, b.ExpireStale())

	outcome := <-result
	require.NoError(t, outcome.err)
	assert.False(t, outcome.confirmed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.delegationDecisions.WithLabelValues("timeout")))
	assert.Zero(t, testutil.ToFloat64(metrics.delegationDecisions.WithLabelValues("declined")))
}

func TestBrokerSubscribeWithBacklog(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	result := confirmAsync(b, testDelegationData("r1"))
	waitPending(t, b, 1)

	events, backlog, cancel := b.SubscribeWithBacklog()
	defer cancel()

	require.Len(t, backlog, 1)
	assert.Equal(t, "r1", backlog[0].RequestID)
	assert.Empty(t, events, "a backlogged prompt must not also arrive live")

	second := confirmAsync(b, testDelegationData("r2"))
	ev := <-events
	assert.Equal(t, "prompt", ev.Type)
	assert.Equal(t, "r2", ev.Prompt.RequestID)

	require.NoError(t, b.Decide("r1", false))
	require.NoError(t, b.Decide("r2", true))
	<-result
	<-second
}

func TestBrokerDecisionEndpoint(t *testing.T) {
	b := NewConfirmationBroker(time.Minute, nil, zap.NewNop())
	app := newBrokerApp(b)
	result := confirmAsync(b, testDelegationData("r9"))
	waitPending(t, b, 1)

	status, body := doJSON(t, app, "GET", "/api/delegations/pending", "")
	require.Equal(t, 200, status)
	assert.Len(t, body["delegations"], 1)

	status, _ = doJSON(t, app, "POST", "/api/delegations/r9/decision", `{}`)
	assert.Equal(t, 400, status)

	status, body = doJSON(t, app, "POST", "/api/delegations/r9/decision", `{"confirmed":true}`)
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["confirmed"])
	assert.True(t, (<-result).confirmed)

	status, _ = doJSON(t, app, "POST", "/api/delegations/unknown/decision", `{"confirmed":true}`)
	assert.Equal(t, 404, status)
}
