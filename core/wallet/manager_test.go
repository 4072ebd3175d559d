package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/types"
)

type fakeProvider struct {
	mu            sync.Mutex
	connected     bool
	grant         bool
	activeKey     string
	signature     types.Signature
	signErr       error
	signCalls     int
	disconnectErr error
	disconnects   int
	events        chan types.ProviderEvent
}

func newFakeProvider(activeKey string) *fakeProvider {
	return &fakeProvider{
		grant:     true,
		activeKey: activeKey,
		signature: types.Signature{Signature: "sig-ok"},
		events:    make(chan types.ProviderEvent, 16),
	}
}

func (p *fakeProvider) IsConnected(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected, nil
}

func (p *fakeProvider) GetActivePublicKey(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeKey, nil
}

func (p *fakeProvider) RequestConnection(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.grant {
		p.connected = true
	}
	return p.grant, nil
}

func (p *fakeProvider) DisconnectFromSite(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnects++
	p.connected = false
	return p.disconnectErr
}

func (p *fakeProvider) Sign(ctx context.Context, deploy, publicKey string) (types.Signature, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signCalls++
	if p.signErr != nil {
		return types.Signature{}, p.signErr
	}
	return p.signature, nil
}

func (p *fakeProvider) Notifications() <-chan types.ProviderEvent {
	return p.events
}

func (p *fakeProvider) emit(kind types.ProviderEventKind, activeKey string) {
	p.events <- types.ProviderEvent{Kind: kind, ActiveKey: activeKey}
}

// fakeBackend serves the user endpoints the manager talks to and counts
// requests per method and address.
type fakeBackend struct {
	mu       sync.Mutex
	balances map[string]string
	gets     map[string]int
	posts    int
	server   *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		balances: map[string]string{},
		gets:     map[string]int{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.posts++
		b.mu.Unlock()
		writeEnvelope(w, map[string]any{"walletAddress": "registered"})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		address := strings.TrimPrefix(r.URL.Path, "/users/")
		b.mu.Lock()
		b.gets[address]++
		balance, ok := b.balances[address]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "user not found"})
			return
		}
		writeEnvelope(w, map[string]any{"walletAddress": address, "ticketBalance": balance})
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func (b *fakeBackend) getCount(address string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets[address]
}

func (b *fakeBackend) postCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.posts
}

func (b *fakeBackend) userAPI(t *testing.T) *restapi.UserAPI {
	t.Helper()
	users, err := restapi.LoadUserAPI(restapi.NewClient(b.server.URL))
	require.NoError(t, err)
	return users
}

func newTestManager(t *testing.T, provider types.Provider, backend *fakeBackend, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	m := NewManager(provider, backend.userAPI(t), opts...)
	t.Cleanup(m.Close)
	return m
}

func TestManagerConnect(t *testing.T) {
	t.Run("happy path connects, refreshes balance and registers", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.balances["key-1"] = "42000000000"
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)

		require.NoError(t, m.Connect(context.Background()))

		session, ok := m.Session()
		require.True(t, ok)
		assert.True(t, session.IsConnected)
		assert.False(t, session.IsLocked)
		assert.Equal(t, "key-1", session.PublicKey)
		assert.Equal(t, "key-1", session.Address)

		require.Eventually(t, func() bool {
			session, _ := m.Session()
			return session.Balance == "42000000000"
		}, 2*time.Second, 10*time.Millisecond, "balance refresh should land")

		require.Eventually(t, func() bool {
			return backend.postCount() == 1
		}, 2*time.Second, 10*time.Millisecond, "registration should be attempted once")
	})

	t.Run("registration failure does not roll back the session", func(t *testing.T) {
		backend := newFakeBackend(t)
		// backend returns 404 for unknown users; registration POST also
		// fails when the server is gone, so shut it down after setup
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		backend.server.Close()

		require.NoError(t, m.Connect(context.Background()))

		session, ok := m.Session()
		require.True(t, ok)
		assert.True(t, session.IsConnected)
		assert.Equal(t, "0", session.Balance)
	})

	t.Run("rejection surfaces and leaves state disconnected", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		provider.grant = false
		m := newTestManager(t, provider, backend)

		err := m.Connect(context.Background())
		require.ErrorIs(t, err, ErrConnectionRejected)

		_, ok := m.Session()
		assert.False(t, ok)
	})

	t.Run("missing provider redirects to install page", func(t *testing.T) {
		backend := newFakeBackend(t)
		var redirected string
		m := newTestManager(t, nil, backend,
			WithInstallURL("https://wallet.example/install"),
			WithInstallRedirect(func(url string) { redirected = url }),
		)

		err := m.Connect(context.Background())
		require.ErrorIs(t, err, ErrProviderMissing)
		assert.Equal(t, "https://wallet.example/install", redirected)
		_, ok := m.Session()
		assert.False(t, ok)
	})
}

func TestManagerResume(t *testing.T) {
	t.Run("restores a pre-existing grant", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.balances["key-1"] = "7000000000"
		provider := newFakeProvider("key-1")
		provider.connected = true
		m := newTestManager(t, provider, backend)

		require.NoError(t, m.Resume(context.Background()))

		session, ok := m.Session()
		require.True(t, ok)
		assert.True(t, session.IsConnected)
		require.Eventually(t, func() bool {
			session, _ := m.Session()
			return session.Balance == "7000000000"
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("no grant is a no-op", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)

		require.NoError(t, m.Resume(context.Background()))
		_, ok := m.Session()
		assert.False(t, ok)
	})
}

func TestManagerDisconnect(t *testing.T) {
	t.Run("revokes the grant and clears state", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))

		m.Disconnect(context.Background())

		_, ok := m.Session()
		assert.False(t, ok)
		assert.Equal(t, 1, provider.disconnects)
	})

	t.Run("revoke failure still clears local state", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		provider.disconnectErr = fmt.Errorf("extension crashed")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))

		m.Disconnect(context.Background())

		_, ok := m.Session()
		assert.False(t, ok)
	})
}

func TestManagerSignDeploy(t *testing.T) {
	deploy := map[string]any{"payment": "100"}

	t.Run("fails when not connected", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)

		_, err := m.SignDeploy(context.Background(), deploy)
		require.ErrorIs(t, err, ErrNotConnected)
		assert.Zero(t, provider.signCalls)
	})

	t.Run("fails without a provider", func(t *testing.T) {
		backend := newFakeBackend(t)
		m := newTestManager(t, nil, backend)

		_, err := m.SignDeploy(context.Background(), deploy)
		require.ErrorIs(t, err, ErrProviderMissing)
	})

	t.Run("surfaces user cancellation", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		provider.signature = types.Signature{Cancelled: true}
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))

		_, err := m.SignDeploy(context.Background(), deploy)
		require.ErrorIs(t, err, ErrSigningCancelled)
	})

	t.Run("returns the signature", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))

		sig, err := m.SignDeploy(context.Background(), deploy)
		require.NoError(t, err)
		assert.Equal(t, "sig-ok", sig)
	})
}

func TestManagerExtensionEvents(t *testing.T) {
	t.Run("activeKeyChanged swaps keys and refreshes once", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.balances["key-1"] = "1000000000"
		backend.balances["key-2"] = "2000000000"
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))
		require.Eventually(t, func() bool {
			return backend.getCount("key-1") == 1
		}, 2*time.Second, 10*time.Millisecond)

		provider.emit(types.ProviderEventActiveKeyChanged, "key-2")

		require.Eventually(t, func() bool {
			session, ok := m.Session()
			return ok && session.PublicKey == "key-2" && session.Balance == "2000000000"
		}, 2*time.Second, 10*time.Millisecond)

		session, _ := m.Session()
		assert.True(t, session.IsConnected, "key change must not alter connectedness")
		assert.Equal(t, "key-2", session.Address)
		assert.Equal(t, 1, backend.getCount("key-2"), "exactly one refresh for the new key")
	})

	t.Run("locked then unlocked toggles only the lock flag", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.balances["key-1"] = "5000000000"
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))
		require.Eventually(t, func() bool {
			session, _ := m.Session()
			return session.Balance == "5000000000"
		}, 2*time.Second, 10*time.Millisecond)

		provider.emit(types.ProviderEventLocked, "")
		require.Eventually(t, func() bool {
			session, _ := m.Session()
			return session.IsLocked
		}, 2*time.Second, 10*time.Millisecond)

		session, _ := m.Session()
		assert.Equal(t, "key-1", session.Address)
		assert.Equal(t, "5000000000", session.Balance)

		provider.emit(types.ProviderEventUnlocked, "")
		require.Eventually(t, func() bool {
			session, _ := m.Session()
			return !session.IsLocked
		}, 2*time.Second, 10*time.Millisecond)

		session, _ = m.Session()
		assert.Equal(t, "key-1", session.Address)
		assert.Equal(t, "5000000000", session.Balance)
	})

	t.Run("disconnected event clears the session", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)
		require.NoError(t, m.Connect(context.Background()))

		provider.emit(types.ProviderEventDisconnected, "")

		require.Eventually(t, func() bool {
			_, ok := m.Session()
			return !ok
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("connected event establishes a session without Connect", func(t *testing.T) {
		backend := newFakeBackend(t)
		backend.balances["key-9"] = "9000000000"
		provider := newFakeProvider("key-9")
		m := newTestManager(t, provider, backend)

		provider.emit(types.ProviderEventConnected, "key-9")

		require.Eventually(t, func() bool {
			session, ok := m.Session()
			return ok && session.IsConnected && session.Balance == "9000000000"
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("observers see every change", func(t *testing.T) {
		backend := newFakeBackend(t)
		provider := newFakeProvider("key-1")
		m := newTestManager(t, provider, backend)

		var mu sync.Mutex
		var states []bool
		m.OnChange(func(_ types.WalletSession, connected bool) {
			mu.Lock()
			states = append(states, connected)
			mu.Unlock()
		})

		require.NoError(t, m.Connect(context.Background()))
		m.Disconnect(context.Background())

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(states) >= 2 && !states[len(states)-1]
		}, 2*time.Second, 10*time.Millisecond)
	})
}
