// Package errs registers every abort kind the RAMM pool can raise as a
// coded, codespaced error, in the style of a Cosmos SDK module error
// table. Every layer of the pool (kernel, oracle, operation engine)
// wraps one of these sentinels rather than returning ad-hoc errors, so
// callers can test the failure kind with errors.Is or errors.ErrorOf.
package errs

import (
	cosmoserrors "cosmossdk.io/errors"
)

// Codespace is the registration namespace for all RAMM error codes.
const Codespace = "ramm"

// Kernel domain errors: overflow, division, and power-function failures.
var (
	ErrMulOverflow          = cosmoserrors.Register(Codespace, 1, "mul overflow")
	ErrDivOverflow          = cosmoserrors.Register(Codespace, 2, "div overflow")
	ErrDividendTooLarge     = cosmoserrors.Register(Codespace, 3, "dividend too large")
	ErrDivByZero            = cosmoserrors.Register(Codespace, 4, "division by zero")
	ErrPowNExponentTooLarge = cosmoserrors.Register(Codespace, 5, "pow_n exponent too large")
	ErrPowNBaseTooLarge     = cosmoserrors.Register(Codespace, 6, "pow_n base too large")
	ErrPowDBaseOutOfBounds  = cosmoserrors.Register(Codespace, 7, "pow_d base out of bounds")
	ErrPowDExpTooLarge      = cosmoserrors.Register(Codespace, 8, "pow_d exponent too large")
)

// Oracle adapter errors: rejected price readings.
var (
	ErrNegativeSbD       = cosmoserrors.Register(Codespace, 20, "oracle price is negative")
	ErrStalePrice        = cosmoserrors.Register(Codespace, 21, "oracle price is stale")
	ErrInvalidAggregator = cosmoserrors.Register(Codespace, 22, "oracle bound to the wrong asset")
)

// Pool / operation-engine errors: precondition and invariant failures
// raised while running a pool operation.
var (
	ErrInvalidSize                    = cosmoserrors.Register(Codespace, 40, "pool arity mismatch with operation arity")
	ErrTradeAmountTooSmall            = cosmoserrors.Register(Codespace, 41, "trade amount below minimum")
	ErrNoLPTokensInCirculation        = cosmoserrors.Register(Codespace, 42, "inbound asset has zero LP supply")
	ErrInsufficientBalance            = cosmoserrors.Register(Codespace, 43, "outbound balance too low")
	ErrTradeExcessAmountIn            = cosmoserrors.Register(Codespace, 44, "trade amount in exceeds MU fraction of balance")
	ErrTradeExcessAmountOut           = cosmoserrors.Register(Codespace, 45, "trade amount out exceeds MU fraction of balance")
	ErrInsufBalForCirculatingLPToken  = cosmoserrors.Register(Codespace, 46, "trade would leave circulating LP token with zero balance")
	ErrInvalidDeposit                 = cosmoserrors.Register(Codespace, 47, "deposit amount must be positive")
	ErrInvalidWithdrawal              = cosmoserrors.Register(Codespace, 48, "withdrawal amount must be positive")
	ErrNotAdmin                       = cosmoserrors.Register(Codespace, 49, "capability does not match pool admin")
	ErrImbalanceRatiosViolated        = cosmoserrors.Register(Codespace, 50, "trade would push imbalance ratios out of bounds")
	ErrSlippageExceeded               = cosmoserrors.Register(Codespace, 51, "trade would exceed the caller's slippage bound")
	ErrAssetNotRegistered             = cosmoserrors.Register(Codespace, 52, "asset is not registered with this pool")
	ErrPoolAlreadyInitialized         = cosmoserrors.Register(Codespace, 53, "pool has already left the Uninit state")
	ErrInvalidAssetCount              = cosmoserrors.Register(Codespace, 54, "pool must hold 2 or 3 assets")
)
