package poolclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/config"
	"github.com/caspool/sdk-go/core/flows"
	"github.com/caspool/sdk-go/core/logging"
	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/types"
	"github.com/caspool/sdk-go/core/wallet"
	"github.com/caspool/sdk-go/core/watch"
)

// Client is the top-level SDK handle: the REST resource groups, the wallet
// session manager, and constructors for the transaction flows and pollers.
type Client struct {
	Wallet *wallet.Manager `validate:"required"`

	rest        *restapi.Client
	pool        *restapi.PoolAPI
	users       *restapi.UserAPI
	squads      *restapi.SquadAPI
	txs         *restapi.TransactionAPI
	broadcaster types.Broadcaster
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	provider    types.Provider
	broadcaster types.Broadcaster
	httpClient  *http.Client
	logger      *zap.Logger
	installURL  string
	onInstall   func(string)
	skipResume  bool
}

// WithProvider attaches the browser wallet extension boundary. Without it
// the client is read-only and Connect reports the extension as missing.
func WithProvider(provider types.Provider) Option {
	return func(s *settings) { s.provider = provider }
}

// WithBroadcaster attaches the collaborator that puts signed deploys on
// the network. Required for deposits.
func WithBroadcaster(b types.Broadcaster) Option {
	return func(s *settings) { s.broadcaster = b }
}

// WithHTTPClient replaces the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *settings) { s.httpClient = hc }
}

// WithLogger replaces the SDK logger for this client.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithInstallURL overrides the wallet extension install page.
func WithInstallURL(url string) Option {
	return func(s *settings) { s.installURL = url }
}

// WithInstallRedirect sets the side effect run when Connect finds no
// extension installed.
func WithInstallRedirect(fn func(url string)) Option {
	return func(s *settings) { s.onInstall = fn }
}

// WithoutResume skips the startup check for a pre-existing wallet grant.
func WithoutResume() Option {
	return func(s *settings) { s.skipResume = true }
}

// NewClient builds a client against baseURL. An empty baseURL uses the
// local development default. When a provider is attached, a pre-existing
// connection grant is resumed best-effort.
func NewClient(ctx context.Context, baseURL string, options ...Option) (*Client, error) {
	s := &settings{logger: logging.Logger}
	for _, option := range options {
		option(s)
	}

	restOpts := []restapi.Option{restapi.WithLogger(s.logger)}
	if s.httpClient != nil {
		restOpts = append(restOpts, restapi.WithHTTPClient(s.httpClient))
	}
	rest := restapi.NewClient(baseURL, restOpts...)

	pool, err := restapi.LoadPoolAPI(rest)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	users, err := restapi.LoadUserAPI(rest)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	squads, err := restapi.LoadSquadAPI(rest)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	txs, err := restapi.LoadTransactionAPI(rest)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	walletOpts := []wallet.Option{wallet.WithLogger(s.logger)}
	if s.installURL != "" {
		walletOpts = append(walletOpts, wallet.WithInstallURL(s.installURL))
	}
	if s.onInstall != nil {
		walletOpts = append(walletOpts, wallet.WithInstallRedirect(s.onInstall))
	}

	c := &Client{
		Wallet:      wallet.NewManager(s.provider, users, walletOpts...),
		rest:        rest,
		pool:        pool,
		users:       users,
		squads:      squads,
		txs:         txs,
		broadcaster: s.broadcaster,
		logger:      s.logger,
	}

	if err := c.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	if s.provider != nil && !s.skipResume {
		if err := c.Wallet.Resume(ctx); err != nil {
			c.logger.Debug("no prior wallet session resumed", zap.Error(err))
		}
	}

	return c, nil
}

// NewClientFromEnv builds a client from environment configuration
// (CASPOOL_API_URL and friends, with a local .env merged when present).
func NewClientFromEnv(ctx context.Context, options ...Option) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if cfg.WalletInstallURL != "" {
		options = append([]Option{WithInstallURL(cfg.WalletInstallURL)}, options...)
	}
	if cfg.HTTPTimeout > 0 {
		options = append([]Option{WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})}, options...)
	}
	return NewClient(ctx, cfg.APIBaseURL, options...)
}

// Validate checks the client wiring.
func (c *Client) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Close releases the wallet event loop.
func (c *Client) Close() {
	c.Wallet.Close()
}

// Pool returns the pool resource group.
func (c *Client) Pool() *restapi.PoolAPI { return c.pool }

// Users returns the user resource group.
func (c *Client) Users() *restapi.UserAPI { return c.users }

// Squads returns the squad resource group.
func (c *Client) Squads() *restapi.SquadAPI { return c.squads }

// Transactions returns the transaction resource group.
func (c *Client) Transactions() *restapi.TransactionAPI { return c.txs }

// NewDepositFlow creates a deposit orchestrator bound to this client's
// wallet and broadcaster.
func (c *Client) NewDepositFlow() *flows.DepositFlow {
	return flows.NewDepositFlow(c.txs, c.Wallet, c.broadcaster)
}

// NewWithdrawFlow creates a withdrawal orchestrator.
func (c *Client) NewWithdrawFlow() *flows.WithdrawFlow {
	return flows.NewWithdrawFlow(c.txs, c.Wallet)
}

// WatchPoolStats creates the 30 second pool stats poller. The caller owns
// Start and Stop.
func (c *Client) WatchPoolStats() *watch.Watcher[*types.PoolStats] {
	return watch.NewPoolStatsWatcher(c.pool)
}

// WatchCurrentRound creates the 10 second round poller.
func (c *Client) WatchCurrentRound() *watch.Watcher[*types.CurrentRound] {
	return watch.NewCurrentRoundWatcher(c.pool)
}

// NewDrawCountdown creates a once-per-second countdown toward the next
// draw time.
func (c *Client) NewDrawCountdown(target time.Time) *watch.Countdown {
	return watch.NewCountdown(target)
}
