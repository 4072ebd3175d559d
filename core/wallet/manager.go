package wallet

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/logging"
	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/types"
)

// DefaultInstallURL is where users without the wallet extension are sent.
const DefaultInstallURL = "https://www.casperwallet.io/"

var (
	// ErrProviderMissing means no wallet extension was detected.
	ErrProviderMissing = errors.New("wallet extension not detected")
	// ErrConnectionRejected means the user declined the connection prompt.
	ErrConnectionRejected = errors.New("wallet connection rejected")
	// ErrNotConnected means an operation needs a connected session.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrSigningCancelled means the user dismissed the signing prompt.
	ErrSigningCancelled = errors.New("signing cancelled by user")
)

// Manager owns the single process-wide wallet session. All writes go
// through the manager and replace the whole session value, so concurrent
// extension events and API calls can never produce a torn read; the latest
// write wins.
type Manager struct {
	provider   types.Provider // nil when no extension is installed
	users      *restapi.UserAPI
	logger     *zap.Logger
	installURL string
	onInstall  func(url string)

	mu         sync.Mutex
	session    types.WalletSession
	hasSession bool
	connecting bool
	observers  []func(types.WalletSession, bool)

	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger replaces the manager's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithInstallURL overrides the extension install page.
func WithInstallURL(url string) Option {
	return func(m *Manager) {
		if url != "" {
			m.installURL = url
		}
	}
}

// WithInstallRedirect sets the side effect run when Connect finds no
// extension, e.g. opening the install page in the embedding UI.
func WithInstallRedirect(fn func(url string)) Option {
	return func(m *Manager) {
		m.onInstall = fn
	}
}

// NewManager creates the session manager and starts consuming the
// provider's lifecycle notifications. provider may be nil when no
// extension is present; users is required for balance reads and
// registration.
func NewManager(provider types.Provider, users *restapi.UserAPI, opts ...Option) *Manager {
	m := &Manager{
		provider:   provider,
		users:      users,
		logger:     logging.Logger,
		installURL: DefaultInstallURL,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if provider != nil {
		go m.eventLoop(provider.Notifications())
	}
	return m
}

// Close stops the event loop. The manager must not be used afterwards.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

// Session returns a snapshot of the current session. The second return is
// false while disconnected.
func (m *Manager) Session() (types.WalletSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.hasSession
}

// IsConnecting reports whether a Connect call is in flight.
func (m *Manager) IsConnecting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connecting
}

// OnChange registers an observer invoked after every session change with a
// snapshot of the new state. Observers must not block.
func (m *Manager) OnChange(fn func(session types.WalletSession, connected bool)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Connect requests a connection grant from the extension. On success the
// session becomes connected and unlocked, the balance refresh and backend
// registration run in the background, and neither can roll the session
// back if they fail.
func (m *Manager) Connect(ctx context.Context) error {
	if m.provider == nil {
		if m.onInstall != nil {
			m.onInstall(m.installURL)
		} else {
			m.logger.Info("wallet extension missing", zap.String("installUrl", m.installURL))
		}
		return errors.Wrapf(ErrProviderMissing, "install it at %s", m.installURL)
	}

	m.setConnecting(true)
	defer m.setConnecting(false)

	granted, err := m.provider.RequestConnection(ctx)
	if err != nil {
		return errors.Wrap(err, "wallet connection request failed")
	}
	if !granted {
		return ErrConnectionRejected
	}

	key, err := m.provider.GetActivePublicKey(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read active public key")
	}
	if key == "" {
		return errors.New("wallet returned an empty active key")
	}

	m.replaceSession(types.WalletSession{
		PublicKey:   key,
		Address:     key,
		Balance:     "0",
		IsConnected: true,
		IsLocked:    false,
	})

	go func() {
		if err := m.refreshBalanceFor(context.Background(), key); err != nil {
			m.logger.Debug("initial balance refresh failed", zap.Error(err))
		}
		m.registerUser(context.Background(), key)
	}()

	return nil
}

// Resume restores a session when the site already holds a grant, e.g.
// after a page reload. It is a no-op without a provider or grant.
func (m *Manager) Resume(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	connected, err := m.provider.IsConnected(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check existing wallet grant")
	}
	if !connected {
		return nil
	}
	key, err := m.provider.GetActivePublicKey(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read active public key")
	}
	if key == "" {
		return nil
	}
	m.replaceSession(types.WalletSession{
		PublicKey:   key,
		Address:     key,
		Balance:     "0",
		IsConnected: true,
		IsLocked:    false,
	})
	go func() {
		if err := m.refreshBalanceFor(context.Background(), key); err != nil {
			m.logger.Debug("resume balance refresh failed", zap.Error(err))
		}
	}()
	return nil
}

// Disconnect asks the extension to revoke the site grant (best effort,
// failures are only logged) and always clears the local session.
func (m *Manager) Disconnect(ctx context.Context) {
	if m.provider != nil {
		if err := m.provider.DisconnectFromSite(ctx); err != nil {
			m.logger.Warn("wallet disconnect failed", zap.Error(err))
		}
	}
	m.clearSession()
}

// SignDeploy serializes the deploy and asks the extension to sign it with
// the active key. It fails without a provider, without a connected
// session, or when the user cancels the prompt.
func (m *Manager) SignDeploy(ctx context.Context, deploy any) (string, error) {
	if m.provider == nil {
		return "", ErrProviderMissing
	}
	session, ok := m.Session()
	if !ok || !session.IsConnected {
		return "", ErrNotConnected
	}

	payload, err := json.Marshal(deploy)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize deploy")
	}

	signature, err := m.provider.Sign(ctx, string(payload), session.PublicKey)
	if err != nil {
		return "", errors.Wrap(err, "wallet signing failed")
	}
	if signature.Cancelled {
		return "", ErrSigningCancelled
	}
	return signature.Signature, nil
}

// RefreshBalance re-reads the user record for the active key and updates
// the session balance. A failed fetch leaves the prior balance untouched.
func (m *Manager) RefreshBalance(ctx context.Context) error {
	session, ok := m.Session()
	if !ok {
		return ErrNotConnected
	}
	return m.refreshBalanceFor(ctx, session.PublicKey)
}

func (m *Manager) refreshBalanceFor(ctx context.Context, publicKey string) error {
	user, err := m.users.GetUser(ctx, publicKey)
	if err != nil {
		return err
	}
	balance := user.TicketBalance
	if balance == "" {
		balance = "0"
	}

	m.mu.Lock()
	// drop the response if the session moved to another key meanwhile
	if !m.hasSession || m.session.PublicKey != publicKey {
		m.mu.Unlock()
		return nil
	}
	next := m.session
	next.Balance = balance
	m.session = next
	m.mu.Unlock()
	m.notify()
	return nil
}

// registerUser upserts the wallet with the backend. Best effort: failure
// is logged and never rolls back the connected session.
func (m *Manager) registerUser(ctx context.Context, publicKey string) {
	_, err := m.users.CreateUser(ctx, types.CreateUserInput{
		WalletAddress: publicKey,
		PublicKey:     publicKey,
	})
	if err != nil {
		m.logger.Warn("user registration failed", zap.String("walletAddress", publicKey), zap.Error(err))
	}
}

func (m *Manager) setConnecting(v bool) {
	m.mu.Lock()
	m.connecting = v
	m.mu.Unlock()
}

func (m *Manager) replaceSession(session types.WalletSession) {
	m.mu.Lock()
	m.session = session
	m.hasSession = true
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) clearSession() {
	m.mu.Lock()
	m.session = types.WalletSession{}
	m.hasSession = false
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	session := m.session
	connected := m.hasSession
	observers := make([]func(types.WalletSession, bool), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()
	for _, fn := range observers {
		fn(session, connected)
	}
}
