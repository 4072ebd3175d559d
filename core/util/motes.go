package util

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MotesPerToken is the fixed-point scale of the staked token: 10^9 motes
// make one display-unit token. Every amount crossing the backend boundary
// is an integer string denominated in motes.
const MotesPerToken = 1_000_000_000

// MinimumDeposit is the smallest deposit the pool accepts, in tokens.
const MinimumDeposit = 10

// motesScale is MotesPerToken as a decimal (1e9).
var motesScale = apd.New(1, 9)

// motesCtx performs all mote arithmetic. Precision 78 covers NUMERIC(78,0)
// style amounts; RoundDown makes Quantize truncate toward zero.
var motesCtx = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(78)
	ctx.Rounding = apd.RoundDown
	return ctx
}()

// ToMotes converts a decimal token amount to an integer mote string.
// Fractional input finer than 10^-9 is truncated toward zero. Negative
// and non-finite amounts are rejected.
func ToMotes(amount string) (string, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "", errors.Wrapf(err, "invalid token amount %q", amount)
	}
	if d.Form != apd.Finite {
		return "", errors.Errorf("token amount %q is not finite", amount)
	}
	if d.Negative {
		return "", errors.Errorf("token amount %q is negative", amount)
	}

	var motes apd.Decimal
	if _, err := motesCtx.Mul(&motes, d, motesScale); err != nil {
		return "", errors.Wrapf(err, "failed to scale amount %q", amount)
	}
	if _, err := motesCtx.Quantize(&motes, &motes, 0); err != nil {
		return "", errors.Wrapf(err, "failed to truncate amount %q", amount)
	}
	return motes.Text('f'), nil
}

// FromMotes converts an integer mote string to a decimal token amount.
// The input is parsed with arbitrary precision, so values beyond 2^63 are
// handled exactly.
func FromMotes(motes string) (*apd.Decimal, error) {
	v, _, err := apd.NewFromString(strings.TrimSpace(motes))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid mote value %q", motes)
	}
	if v.Form != apd.Finite {
		return nil, errors.Errorf("mote value %q is not finite", motes)
	}

	var tokens apd.Decimal
	if _, err := motesCtx.Quo(&tokens, v, motesScale); err != nil {
		return nil, errors.Wrapf(err, "failed to descale motes %q", motes)
	}
	return &tokens, nil
}

// FormatMotes renders a mote string as a locale-grouped token amount with
// at most decimals fractional digits, rounded half up with trailing zeros
// stripped. The split is computed with big integers so amounts beyond 2^53
// keep every digit.
func FormatMotes(motes string, decimals int) (string, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(motes), 10)
	if !ok {
		return "", errors.Errorf("invalid mote value %q", motes)
	}
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 9 {
		decimals = 9
	}

	sign := ""
	abs := new(big.Int).Abs(v)
	if v.Sign() < 0 {
		sign = "-"
	}

	// Round half up to the requested precision, then split into integer
	// tokens and the remaining fractional digits.
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(9-decimals)), nil)
	rounded := new(big.Int).Add(abs, new(big.Int).Div(scale, big.NewInt(2)))
	rounded.Div(rounded, scale)

	fracScale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	intPart, rem := new(big.Int).QuoRem(rounded, fracScale, new(big.Int))

	var grouped string
	if intPart.IsInt64() {
		grouped = message.NewPrinter(language.English).Sprintf("%d", intPart.Int64())
	} else {
		grouped = groupThousands(intPart.String())
	}

	frac := ""
	if decimals > 0 && rem.Sign() != 0 {
		digits := rem.String()
		digits = strings.Repeat("0", decimals-len(digits)) + digits
		digits = strings.TrimRight(digits, "0")
		frac = "." + digits
	}

	return sign + grouped + frac, nil
}

// groupThousands inserts comma separators into a plain digit string.
// message.Printer handles the int64 range; this covers the rest.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
