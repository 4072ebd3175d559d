package types

import "context"

// WalletSession is the single process-wide snapshot of the browser wallet
// connection. It is owned by the wallet.Manager: consumers read copies,
// only the manager writes, and every write replaces the whole value.
type WalletSession struct {
	PublicKey string
	// Address equals PublicKey on this network; kept separate because the
	// backend keys users by walletAddress.
	Address     string
	Balance     string // ticket balance in motes
	IsConnected bool
	IsLocked    bool
}

// ProviderEventKind identifies a lifecycle notification emitted by the
// wallet extension.
type ProviderEventKind string

const (
	ProviderEventConnected        ProviderEventKind = "connected"
	ProviderEventDisconnected     ProviderEventKind = "disconnected"
	ProviderEventActiveKeyChanged ProviderEventKind = "activeKeyChanged"
	ProviderEventLocked           ProviderEventKind = "locked"
	ProviderEventUnlocked         ProviderEventKind = "unlocked"
)

// ProviderEvent is a lifecycle notification from the wallet extension.
// ActiveKey is set for connected and activeKeyChanged events.
type ProviderEvent struct {
	Kind      ProviderEventKind
	ActiveKey string
}

// Signature is the result of a signing prompt. Cancelled is set when the
// user dismissed the prompt instead of approving it.
type Signature struct {
	Signature string
	Cancelled bool
}

// Provider is the browser wallet extension boundary. Implementations bridge
// to the actual extension; tests substitute fakes.
type Provider interface {
	// IsConnected reports whether the site already holds a connection grant.
	IsConnected(ctx context.Context) (bool, error)

	// GetActivePublicKey returns the hex public key of the active account.
	GetActivePublicKey(ctx context.Context) (string, error)

	// RequestConnection prompts the user to grant the site access. It
	// returns false when the user declines.
	RequestConnection(ctx context.Context) (bool, error)

	// DisconnectFromSite revokes the site's connection grant.
	DisconnectFromSite(ctx context.Context) error

	// Sign asks the extension to sign the serialized deploy with the given
	// public key.
	Sign(ctx context.Context, deploy string, publicKey string) (Signature, error)

	// Notifications delivers extension lifecycle events for as long as the
	// provider is alive. The channel is closed when the provider shuts down.
	Notifications() <-chan ProviderEvent
}

// Broadcaster puts a signed deploy on the network and returns the real
// transaction hash. It is an external collaborator: the deposit flow will
// not confirm a deposit against the backend without a hash produced here.
type Broadcaster interface {
	SubmitDeploy(ctx context.Context, signedDeploy string) (string, error)
}
