package flows

import (
	"context"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/caspool/sdk-go/core/logging"
	"github.com/caspool/sdk-go/core/restapi"
	"github.com/caspool/sdk-go/core/util"
	"github.com/caspool/sdk-go/core/wallet"
)

// WithdrawFlow orchestrates withdrawal requests and claims. A request
// prepares and signs a deploy, then opens an unbonding withdrawal with the
// backend; a claim references an existing withdrawal directly.
type WithdrawFlow struct {
	flowState

	txs    *restapi.TransactionAPI
	wallet *wallet.Manager
	logger *zap.Logger

	idMu         sync.Mutex
	withdrawalID string
}

// NewWithdrawFlow wires a withdrawal orchestrator.
func NewWithdrawFlow(txs *restapi.TransactionAPI, manager *wallet.Manager) *WithdrawFlow {
	return &WithdrawFlow{
		txs:    txs,
		wallet: manager,
		logger: logging.Logger,
	}
}

// WithdrawalID returns the id of the last successfully requested
// withdrawal.
func (f *WithdrawFlow) WithdrawalID() string {
	f.idMu.Lock()
	defer f.idMu.Unlock()
	return f.withdrawalID
}

// Request opens a withdrawal for a token amount. There is no client-side
// minimum; the amount only has to be positive. Returns the withdrawal id
// the claim step will need after unbonding.
func (f *WithdrawFlow) Request(ctx context.Context, tokens string) (string, error) {
	f.Reset()
	f.idMu.Lock()
	f.withdrawalID = ""
	f.idMu.Unlock()

	session, ok := f.wallet.Session()
	if !ok || !session.IsConnected {
		return "", f.fail(wallet.ErrNotConnected)
	}

	amount, _, err := apd.NewFromString(tokens)
	if err != nil {
		return "", f.fail(errors.Wrapf(err, "invalid withdrawal amount %q", tokens))
	}
	if amount.Form != apd.Finite || amount.Sign() <= 0 {
		return "", f.fail(errors.Errorf("withdrawal amount must be positive, got %q", tokens))
	}

	motes, err := util.ToMotes(tokens)
	if err != nil {
		return "", f.fail(err)
	}

	f.setPhase(PhasePreparing)
	prepared, err := f.txs.PrepareWithdraw(ctx, session.PublicKey, motes)
	if err != nil {
		return "", f.fail(errors.Wrap(err, "failed to prepare withdrawal"))
	}

	f.setPhase(PhaseSigning)
	if _, err := f.wallet.SignDeploy(ctx, prepared.Deploy); err != nil {
		return "", f.fail(err)
	}

	f.setPhase(PhaseSubmitting)
	withdrawal, err := f.txs.RequestWithdraw(ctx, session.PublicKey, motes)
	if err != nil {
		return "", f.fail(errors.Wrap(err, "failed to request withdrawal"))
	}

	f.idMu.Lock()
	f.withdrawalID = withdrawal.ID
	f.idMu.Unlock()
	f.succeed()
	f.logger.Info("withdrawal requested",
		zap.String("walletAddress", session.PublicKey),
		zap.String("amount", motes),
		zap.String("withdrawalId", withdrawal.ID),
	)
	return withdrawal.ID, nil
}

// Claim claims a withdrawal whose unbonding period has elapsed. No
// prepare or sign step is involved.
func (f *WithdrawFlow) Claim(ctx context.Context, withdrawalID string) error {
	f.Reset()

	session, ok := f.wallet.Session()
	if !ok || !session.IsConnected {
		return f.fail(wallet.ErrNotConnected)
	}
	if withdrawalID == "" {
		return f.fail(errors.New("withdrawal id is required"))
	}

	f.setPhase(PhaseSubmitting)
	if _, err := f.txs.ClaimWithdraw(ctx, session.PublicKey, withdrawalID); err != nil {
		return f.fail(errors.Wrap(err, "failed to claim withdrawal"))
	}

	f.succeed()
	f.logger.Info("withdrawal claimed",
		zap.String("walletAddress", session.PublicKey),
		zap.String("withdrawalId", withdrawalID),
	)
	return nil
}
