package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simkidd/dwec-winery-storefront/internal/cart"
	"github.com/simkidd/dwec-winery-storefront/internal/session"
	"github.com/simkidd/dwec-winery-storefront/pkg/enums"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/metrics"
	"github.com/simkidd/dwec-winery-storefront/pkg/types"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

// DeliveryResolver resolves a delivery area to its fee.
type DeliveryResolver interface {
	AreaByID(ctx context.Context, cred upstream.Credentials, areaID string) (*types.DeliveryArea, error)
}

// PaymentsAPI is the slice of the upstream client checkout needs.
type PaymentsAPI interface {
	InitializePaystackPayment(ctx context.Context, cred upstream.Credentials, req upstream.PaymentInitRequest) (*upstream.PaymentInit, error)
	VerifyPaystackPayment(ctx context.Context, cred upstream.Credentials, reference string) (*upstream.PaymentVerification, error)
	CreateOrder(ctx context.Context, cred upstream.Credentials, req upstream.CreateOrderRequest) (*upstream.Order, error)
}

// Publisher emits checkout outcomes to interested consumers.
type Publisher interface {
	CheckoutConfirmed(ctx context.Context, userID, orderID, reference string)
}

// Orchestrator drives a checkout attempt through its stages. The cart stays
// live until confirmation: it is cleared exactly once, inside the confirmed
// transition, and never on failure.
type Orchestrator struct {
	store  ContextStore
	carts  cart.Service
	areas  DeliveryResolver
	api    PaymentsAPI
	events Publisher
	logg   *logger.Logger
	metric *metrics.StorefrontMetrics
	now    func() time.Time
	newID  func() string
}

// OrchestratorOptions wires the orchestrator's collaborators. Events, Logger,
// and Metrics may be nil.
type OrchestratorOptions struct {
	Store   ContextStore
	Carts   cart.Service
	Areas   DeliveryResolver
	API     PaymentsAPI
	Events  Publisher
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
}

// NewOrchestrator builds the checkout orchestrator.
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Store == nil || opts.Carts == nil || opts.Areas == nil || opts.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout orchestrator is missing a collaborator")
	}
	return &Orchestrator{
		store:  opts.Store,
		carts:  opts.Carts,
		areas:  opts.Areas,
		api:    opts.API,
		events: opts.Events,
		logg:   opts.Logger,
		metric: opts.Metrics,
		now:    time.Now,
		newID:  uuid.NewString,
	}, nil
}

// Begin opens a checkout attempt over the viewer's current cart.
func (o *Orchestrator) Begin(ctx context.Context, viewerID string) (*Attempt, error) {
	state, err := o.carts.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot check out an empty cart")
	}

	now := o.now().UTC()
	attempt := &Attempt{
		ID:           o.newID(),
		ViewerID:     viewerID,
		Stage:        enums.StageReviewingCart,
		SubtotalKobo: state.SubtotalKobo(),
		TotalKobo:    state.SubtotalKobo(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := o.store.Save(ctx, attempt); err != nil {
		return nil, err
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))
	return attempt, nil
}

// Get returns the attempt as stored.
func (o *Orchestrator) Get(ctx context.Context, attemptID string) (*Attempt, error) {
	return o.store.Load(ctx, attemptID)
}

// SelectDelivery binds a delivery area to the attempt and recomputes the
// total. Reselecting a different area is allowed until payment starts.
func (o *Orchestrator) SelectDelivery(ctx context.Context, cred upstream.Credentials, attemptID, areaID string) (*Attempt, error) {
	attempt, err := o.store.Load(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	area, err := o.areas.AreaByID(ctx, cred, areaID)
	if err != nil {
		return nil, err
	}

	if err := attempt.advance(enums.StageSelectingDelivery, o.now().UTC()); err != nil {
		return nil, err
	}
	attempt.DeliveryAreaID = area.ID
	attempt.DeliveryAreaName = area.Name
	attempt.DeliveryFeeKobo = area.FeeKobo
	attempt.TotalKobo = attempt.SubtotalKobo + area.FeeKobo

	if err := o.store.Save(ctx, attempt); err != nil {
		return nil, err
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))
	return attempt, nil
}

// InitializePayment asks the commerce API for a Paystack transaction over the
// attempt's total. Requires an authenticated session; the anonymous path is
// rejected before any network traffic.
func (o *Orchestrator) InitializePayment(ctx context.Context, sess session.Session, cred upstream.Credentials, attemptID string) (*Attempt, *upstream.PaymentInit, error) {
	if !sess.Authenticated() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeAuthRequired, "payment requires an authenticated session")
	}

	attempt, err := o.store.Load(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if err := attempt.advance(enums.StageInitializingPayment, o.now().UTC()); err != nil {
		return nil, nil, err
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))

	init, err := o.api.InitializePaystackPayment(ctx, cred, upstream.PaymentInitRequest{
		AmountKobo: attempt.TotalKobo,
		Email:      sess.User.Email,
	})
	if err != nil {
		o.fail(ctx, attempt, "payment initialization failed")
		return nil, nil, err
	}

	attempt.PaymentReference = init.Reference
	if err := attempt.advance(enums.StageAwaitingConfirmation, o.now().UTC()); err != nil {
		return nil, nil, err
	}
	if err := o.store.Save(ctx, attempt); err != nil {
		return nil, nil, err
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))
	return attempt, init, nil
}

// ConfirmPayment handles the success callback for a payment reference. The
// reference is verified with the commerce API before the order is created;
// the cart is cleared only inside the confirmed transition. A terminal
// attempt rejects the callback, which makes confirmation exactly-once.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, sess session.Session, cred upstream.Credentials, attemptID, reference string) (*Attempt, error) {
	attempt, err := o.store.Load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Terminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt already settled")
	}
	if attempt.Stage != enums.StageAwaitingConfirmation {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no payment awaiting confirmation")
	}
	if reference == "" || reference != attempt.PaymentReference {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference does not match this attempt")
	}

	verification, err := o.api.VerifyPaystackPayment(ctx, cred, reference)
	if err != nil {
		// Verification is retryable; the attempt stays awaiting.
		return nil, err
	}
	if !verification.Succeeded() {
		o.fail(ctx, attempt, "payment was not confirmed")
		return attempt, nil
	}

	order, err := o.placeOrder(ctx, cred, attempt)
	if err != nil {
		// The widget calls back exactly once, so a confirmation that cannot
		// place its order settles as failed rather than hanging awaiting.
		o.fail(ctx, attempt, "order creation failed")
		return nil, err
	}
	attempt.OrderID = order.ID

	if err := attempt.advance(enums.StageConfirmed, o.now().UTC()); err != nil {
		return nil, err
	}
	if _, err := o.carts.Clear(ctx, attempt.ViewerID); err != nil && o.logg != nil {
		o.logg.Warn(o.logg.WithViewerID(ctx, attempt.ViewerID), "checkout.cart clear after confirmation failed")
	}
	if err := o.store.Save(ctx, attempt); err != nil {
		return nil, err
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))

	if o.events != nil && sess.User != nil {
		o.events.CheckoutConfirmed(ctx, sess.User.ID, order.ID, reference)
	}
	return attempt, nil
}

// FailPayment handles the failure callback. The cart is preserved so the
// viewer can retry from a fresh attempt.
func (o *Orchestrator) FailPayment(ctx context.Context, attemptID, reason string) (*Attempt, error) {
	attempt, err := o.store.Load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Terminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout attempt already settled")
	}
	if reason == "" {
		reason = "payment failed"
	}
	o.fail(ctx, attempt, reason)
	return attempt, nil
}

// placeOrder snapshots the live cart into a create-order payload. Amounts go
// upstream in naira.
func (o *Orchestrator) placeOrder(ctx context.Context, cred upstream.Credentials, attempt *Attempt) (*upstream.Order, error) {
	state, err := o.carts.Get(ctx, attempt.ViewerID)
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart emptied before order placement")
	}

	items := make([]upstream.CreateOrderItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		item := upstream.CreateOrderItem{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     types.NairaFromKobo(line.UnitPriceKobo()).InexactFloat64(),
		}
		if line.Variant != nil {
			item.VariantID = line.Variant.ID
		}
		items = append(items, item)
	}

	return o.api.CreateOrder(ctx, cred, upstream.CreateOrderRequest{
		Items:            items,
		DeliveryAreaID:   attempt.DeliveryAreaID,
		DeliveryFee:      types.NairaFromKobo(attempt.DeliveryFeeKobo).InexactFloat64(),
		TotalAmount:      types.NairaFromKobo(attempt.TotalKobo).InexactFloat64(),
		PaymentReference: attempt.PaymentReference,
	})
}

func (o *Orchestrator) fail(ctx context.Context, attempt *Attempt, reason string) {
	if err := attempt.advance(enums.StageFailed, o.now().UTC()); err != nil {
		return
	}
	attempt.FailureReason = reason
	if err := o.store.Save(ctx, attempt); err != nil && o.logg != nil {
		o.logg.Error(ctx, "checkout.attempt save after failure", err)
	}
	o.metric.IncCheckoutTransition(string(attempt.Stage))
}
