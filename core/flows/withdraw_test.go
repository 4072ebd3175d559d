package flows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caspool/sdk-go/core/wallet"
)

func TestWithdrawFlowRequest(t *testing.T) {
	t.Run("prepares, signs, then requests", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		id, err := flow.Request(context.Background(), "5.5")

		require.NoError(t, err)
		assert.Equal(t, "wd-42", id)
		assert.Equal(t, "wd-42", flow.WithdrawalID())
		assert.Equal(t, PhaseDone, flow.Phase())
		assert.Equal(t, []string{"withdraw-prepare", "withdraw-request"}, backend.steps())
		assert.Equal(t, 1, provider.calls())
	})

	t.Run("no minimum below ten tokens", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		_, err := flow.Request(context.Background(), "2")
		require.NoError(t, err)
	})

	t.Run("rejects non-positive amounts before any call", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		for _, amount := range []string{"0", "-1", "nope"} {
			_, err := flow.Request(context.Background(), amount)
			require.Error(t, err, "amount %q", amount)
		}
		assert.Empty(t, backend.steps())
	})

	t.Run("cancelled signature stops before the request", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		provider.cancelled = true
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		_, err := flow.Request(context.Background(), "5")

		require.ErrorIs(t, err, wallet.ErrSigningCancelled)
		assert.Equal(t, PhaseFailed, flow.Phase())
		assert.NotContains(t, backend.steps(), "withdraw-request")
	})

	t.Run("requires a connected wallet", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := disconnectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		_, err := flow.Request(context.Background(), "5")
		require.ErrorIs(t, err, wallet.ErrNotConnected)
	})
}

func TestWithdrawFlowClaim(t *testing.T) {
	t.Run("claims by withdrawal id", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		require.NoError(t, flow.Claim(context.Background(), "wd-42"))

		assert.Equal(t, PhaseDone, flow.Phase())
		assert.Equal(t, []string{"withdraw-claim"}, backend.steps())
		assert.Zero(t, provider.calls(), "claim involves no signing")
	})

	t.Run("requires a withdrawal id", func(t *testing.T) {
		backend := newTxBackend(t)
		provider := newFakeProvider()
		manager := connectedWallet(t, backend, provider)
		flow := NewWithdrawFlow(txAPI(t, backend), manager)

		err := flow.Claim(context.Background(), "")
		require.Error(t, err)
		assert.Empty(t, backend.steps())
	})
}
