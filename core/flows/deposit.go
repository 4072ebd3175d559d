package flows

import (
	"context"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/logging"
	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/types"
	"github.com/caspool/sdk-go/core/util"
	"github.com/caspool/sdk-go/core/wallet"
)

// ErrNoBroadcaster means the deposit flow has no way to put the signed
// deploy on the network.
var ErrNoBroadcaster = errors.New("no deploy broadcaster configured")

var minimumDeposit = apd.New(util.MinimumDeposit, 0)

// DepositFlow orchestrates one deposit: local validation, prepare against
// the backend, sign via the wallet, broadcast, then confirm with the real
// transaction hash. Failure at any step ends the flow; there is no
// rollback beyond surfacing the error.
type DepositFlow struct {
	flowState

	txs         *restapi.TransactionAPI
	wallet      *wallet.Manager
	broadcaster types.Broadcaster
	logger      *zap.Logger

	hashMu sync.Mutex
	txHash string
}

// NewDepositFlow wires a deposit orchestrator. broadcaster is the external
// collaborator that yields the on-network transaction hash.
func NewDepositFlow(txs *restapi.TransactionAPI, manager *wallet.Manager, broadcaster types.Broadcaster) *DepositFlow {
	return &DepositFlow{
		txs:         txs,
		wallet:      manager,
		broadcaster: broadcaster,
		logger:      logging.Logger,
	}
}

// TxHash returns the hash of the last successful deposit.
func (f *DepositFlow) TxHash() string {
	f.hashMu.Lock()
	defer f.hashMu.Unlock()
	return f.txHash
}

// Deposit runs the full flow for a token amount (display units, e.g.
// "25"). It returns the confirmed transaction hash. Validation failures
// return before any network or wallet call.
func (f *DepositFlow) Deposit(ctx context.Context, tokens string) (string, error) {
	f.Reset()
	f.hashMu.Lock()
	f.txHash = ""
	f.hashMu.Unlock()

	session, ok := f.wallet.Session()
	if !ok || !session.IsConnected {
		return "", f.fail(wallet.ErrNotConnected)
	}

	amount, _, err := apd.NewFromString(tokens)
	if err != nil {
		return "", f.fail(errors.Wrapf(err, "invalid deposit amount %q", tokens))
	}
	if amount.Form != apd.Finite || amount.Sign() <= 0 {
		return "", f.fail(errors.Errorf("deposit amount must be positive, got %q", tokens))
	}
	if amount.Cmp(minimumDeposit) < 0 {
		return "", f.fail(errors.Errorf("minimum deposit is %d tokens", util.MinimumDeposit))
	}

	motes, err := util.ToMotes(tokens)
	if err != nil {
		return "", f.fail(err)
	}

	f.setPhase(PhasePreparing)
	prepared, err := f.txs.PrepareDeposit(ctx, session.PublicKey, motes)
	if err != nil {
		return "", f.fail(errors.Wrap(err, "failed to prepare deposit"))
	}

	f.setPhase(PhaseSigning)
	signed, err := f.wallet.SignDeploy(ctx, prepared.Deploy)
	if err != nil {
		return "", f.fail(err)
	}

	f.setPhase(PhaseSubmitting)
	if f.broadcaster == nil {
		return "", f.fail(ErrNoBroadcaster)
	}
	txHash, err := f.broadcaster.SubmitDeploy(ctx, signed)
	if err != nil {
		return "", f.fail(errors.Wrap(err, "failed to broadcast deposit deploy"))
	}

	if _, err := f.txs.ConfirmDeposit(ctx, session.PublicKey, motes, txHash); err != nil {
		return "", f.fail(errors.Wrap(err, "failed to confirm deposit"))
	}

	f.hashMu.Lock()
	f.txHash = txHash
	f.hashMu.Unlock()
	f.succeed()
	f.logger.Info("deposit confirmed",
		zap.String("walletAddress", session.PublicKey),
		zap.String("amount", motes),
		zap.String("txHash", txHash),
	)
	return txHash, nil
}
