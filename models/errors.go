package models

import "errors"

var (
	ErrInvalidMarketSlug       = errors.New("invalid market slug")
	ErrInvalidMarketTitle      = errors.New("invalid market title")
	ErrDescriptionTooLong      = errors.New("market description too long")
	ErrCategoryTooLong         = errors.New("market category too long")
	ErrResolutionSourceTooLong = errors.New("resolution source too long")
	ErrInvalidMarketID         = errors.New("invalid market ID")
	ErrInvalidCreatorID        = errors.New("invalid creator ID")
	ErrInvalidOracleID         = errors.New("invalid oracle ID")
	ErrInvalidCloseTime        = errors.New("invalid close time")
	ErrHorizonTooFar           = errors.New("close time beyond maximum horizon")
	ErrInvalidOutcomeCount     = errors.New("market requires at least two outcomes")
	ErrInvalidOutcomeLabel     = errors.New("invalid outcome label")

	ErrMarketNotActive       = errors.New("market is not active")
	ErrMarketNotPaused       = errors.New("market is not paused")
	ErrMarketExpired         = errors.New("market close time has passed")
	ErrMarketNotExpired      = errors.New("market close time has not passed")
	ErrMarketAlreadyResolved = errors.New("market is already resolved")
	ErrMarketNotResolved     = errors.New("market is not resolved")
	ErrMarketNotCancelled    = errors.New("market is not cancelled")
	ErrMarketTerminal        = errors.New("market is in a terminal state")

	ErrCreatorFeeTooHigh  = errors.New("creator fee exceeds maximum")
	ErrPlatformFeeTooHigh = errors.New("platform fee exceeds maximum")
	ErrInvalidBetBounds   = errors.New("invalid bet amount bounds")

	ErrInvalidOutcome   = errors.New("invalid outcome index")
	ErrInvalidBetAmount = errors.New("invalid bet amount")
	ErrBetBelowMinimum  = errors.New("bet amount below market minimum")
	ErrBetAboveMaximum  = errors.New("bet amount above market maximum")
	ErrPayoutTooHigh    = errors.New("potential payout exceeds per-bet cap")

	ErrUnauthorizedResolver = errors.New("resolver is not the market oracle")
	ErrEvidenceTooLarge     = errors.New("resolution evidence too large")
	ErrAlreadyClaimed       = errors.New("position already claimed")
	ErrInvalidPosition      = errors.New("invalid position")
	ErrNoWinnings           = errors.New("position has no winnings")

	ErrInvalidLiquidityAmount = errors.New("invalid liquidity amount")

	ErrInsufficientLiquidity = errors.New("insufficient initial liquidity")
	ErrInsufficientLpTokens  = errors.New("insufficient LP token balance")
	ErrEmptyPool             = errors.New("liquidity pool is empty")
	ErrSlippageExceeded      = errors.New("slippage tolerance exceeded")
	ErrPoolNotFound          = errors.New("liquidity pool not found")
	ErrProviderInactive      = errors.New("liquidity position is inactive")

	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")

	ErrInvalidUUID    = errors.New("invalid UUID")
	ErrRecordNotFound = errors.New("record not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)
