package enums

// SessionStatus tracks the resolution of a browser session. Resolution is
// synchronous server-side, so a session is only ever one of these two.
type SessionStatus string

const (
	SessionAuthenticated SessionStatus = "authenticated"
	SessionAnonymous     SessionStatus = "anonymous"
)

// CheckoutStage identifies where a checkout attempt currently sits.
type CheckoutStage string

const (
	StageReviewingCart        CheckoutStage = "reviewing_cart"
	StageSelectingDelivery    CheckoutStage = "selecting_delivery"
	StageInitializingPayment  CheckoutStage = "initializing_payment"
	StageAwaitingConfirmation CheckoutStage = "awaiting_confirmation"
	StageConfirmed            CheckoutStage = "confirmed"
	StageFailed               CheckoutStage = "failed"
)

// IsValid reports whether the stage is a known checkout stage.
func (s CheckoutStage) IsValid() bool {
	switch s {
	case StageReviewingCart, StageSelectingDelivery, StageInitializingPayment,
		StageAwaitingConfirmation, StageConfirmed, StageFailed:
		return true
	}
	return false
}

// Terminal reports whether the stage ends the attempt.
func (s CheckoutStage) Terminal() bool {
	return s == StageConfirmed || s == StageFailed
}

// Currency is the ISO code for amounts handled by the storefront.
type Currency string

const CurrencyNGN Currency = "NGN"

// IsValid reports whether the currency is one the storefront accepts.
func (c Currency) IsValid() bool {
	return c == CurrencyNGN
}
