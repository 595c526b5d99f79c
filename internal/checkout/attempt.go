package checkout

import (
	"fmt"
	"time"

	"github.com/simkidd/dwec-winery-storefront/pkg/enums"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
)

// Attempt is one checkout run for a viewer. It lives in redis until it either
// reaches a terminal stage or its TTL expires.
type Attempt struct {
	ID               string              `json:"id"`
	ViewerID         string              `json:"viewer_id"`
	Stage            enums.CheckoutStage `json:"stage"`
	SubtotalKobo     int                 `json:"subtotal_kobo"`
	DeliveryAreaID   string              `json:"delivery_area_id,omitempty"`
	DeliveryAreaName string              `json:"delivery_area_name,omitempty"`
	DeliveryFeeKobo  int                 `json:"delivery_fee_kobo"`
	TotalKobo        int                 `json:"total_kobo"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	OrderID          string              `json:"order_id,omitempty"`
	FailureReason    string              `json:"failure_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Terminal reports whether the attempt can accept no further transitions.
func (a *Attempt) Terminal() bool {
	return a.Stage.Terminal()
}

var allowedTransitions = map[enums.CheckoutStage][]enums.CheckoutStage{
	enums.StageReviewingCart:        {enums.StageSelectingDelivery, enums.StageFailed},
	enums.StageSelectingDelivery:    {enums.StageSelectingDelivery, enums.StageInitializingPayment, enums.StageFailed},
	enums.StageInitializingPayment:  {enums.StageAwaitingConfirmation, enums.StageFailed},
	enums.StageAwaitingConfirmation: {enums.StageConfirmed, enums.StageFailed},
}

// advance moves the attempt to the next stage, rejecting transitions the
// stage machine does not allow.
func (a *Attempt) advance(to enums.CheckoutStage, now time.Time) error {
	for _, allowed := range allowedTransitions[a.Stage] {
		if allowed == to {
			a.Stage = to
			a.UpdatedAt = now
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("checkout cannot move from %s to %s", a.Stage, to))
}
