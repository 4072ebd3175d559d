package wallet

import (
	"context"

	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/types"
)

// eventLoop applies extension lifecycle notifications to the session for
// as long as the manager is open. Events can arrive at any time, including
// while a Connect, Disconnect or SignDeploy call is in flight; each one is
// applied as a full-state replace, so the latest event wins.
func (m *Manager) eventLoop(events <-chan types.ProviderEvent) {
	for {
		select {
		case <-m.done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.applyEvent(ev)
		}
	}
}

func (m *Manager) applyEvent(ev types.ProviderEvent) {
	switch ev.Kind {
	case types.ProviderEventConnected:
		if ev.ActiveKey == "" {
			return
		}
		m.replaceSession(types.WalletSession{
			PublicKey:   ev.ActiveKey,
			Address:     ev.ActiveKey,
			Balance:     "0",
			IsConnected: true,
			IsLocked:    false,
		})
		if err := m.refreshBalanceFor(context.Background(), ev.ActiveKey); err != nil {
			m.logger.Debug("balance refresh after connect event failed", zap.Error(err))
		}

	case types.ProviderEventDisconnected:
		m.clearSession()

	case types.ProviderEventActiveKeyChanged:
		if ev.ActiveKey == "" {
			return
		}
		m.mu.Lock()
		if !m.hasSession {
			m.mu.Unlock()
			return
		}
		next := m.session
		next.PublicKey = ev.ActiveKey
		next.Address = ev.ActiveKey
		m.session = next
		m.mu.Unlock()
		m.notify()
		if err := m.refreshBalanceFor(context.Background(), ev.ActiveKey); err != nil {
			m.logger.Debug("balance refresh after key change failed", zap.Error(err))
		}

	case types.ProviderEventLocked:
		m.setLocked(true)

	case types.ProviderEventUnlocked:
		m.setLocked(false)

	default:
		m.logger.Debug("ignoring unknown wallet event", zap.String("kind", string(ev.Kind)))
	}
}

func (m *Manager) setLocked(locked bool) {
	m.mu.Lock()
	if !m.hasSession {
		m.mu.Unlock()
		return
	}
	next := m.session
	next.IsLocked = locked
	m.session = next
	m.mu.Unlock()
	m.notify()
}
