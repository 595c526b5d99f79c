package controllers

import (
	"crypto/hmac"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simkidd/dwec-winery-storefront/api/middleware"
	"github.com/simkidd/dwec-winery-storefront/api/responses"
	"github.com/simkidd/dwec-winery-storefront/api/validators"
	checkoutsvc "github.com/simkidd/dwec-winery-storefront/internal/checkout"
	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	pkgerrors "github.com/simkidd/dwec-winery-storefront/pkg/errors"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
	"github.com/simkidd/dwec-winery-storefront/pkg/upstream"
)

const callbackTokenHeader = "X-Callback-Token"

// CheckoutBegin opens a checkout attempt over the viewer's cart.
func CheckoutBegin(svc *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewerID, err := requireViewer(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attempt, err := svc.Begin(r.Context(), viewerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attempt)
	}
}

// CheckoutShow returns the attempt as stored.
func CheckoutShow(svc *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := svc.Get(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempt)
	}
}

// CheckoutSelectDelivery binds a delivery area to the attempt.
func CheckoutSelectDelivery(svc *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload selectDeliveryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		attempt, err := svc.SelectDelivery(ctx, middleware.CredentialsFromContext(ctx), chi.URLParam(r, "attemptID"), payload.AreaID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempt)
	}
}

// CheckoutInitializePayment starts a Paystack transaction for the attempt.
func CheckoutInitializePayment(svc *checkoutsvc.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		attempt, init, err := svc.InitializePayment(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx), chi.URLParam(r, "attemptID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentInitResponse{Attempt: attempt, Payment: init})
	}
}

// CheckoutCallback receives the payment widget's terminal callback. Exactly
// one of success or failure settles the attempt; later callbacks conflict.
func CheckoutCallback(svc *checkoutsvc.Orchestrator, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cfg.CallbackSecret != "" {
			presented := r.Header.Get(callbackTokenHeader)
			if !hmac.Equal([]byte(presented), []byte(cfg.CallbackSecret)) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "callback token mismatch"))
				return
			}
		}

		var payload callbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		attemptID := chi.URLParam(r, "attemptID")
		var attempt *checkoutsvc.Attempt
		var err error
		switch payload.Status {
		case "success":
			attempt, err = svc.ConfirmPayment(ctx, middleware.SessionFromContext(ctx), middleware.CredentialsFromContext(ctx), attemptID, payload.Reference)
		case "failed":
			attempt, err = svc.FailPayment(ctx, attemptID, payload.Reason)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "callback status must be success or failed")
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, attempt)
	}
}

type selectDeliveryRequest struct {
	AreaID string `json:"area_id" validate:"required"`
}

type callbackRequest struct {
	Status    string `json:"status" validate:"required"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

type paymentInitResponse struct {
	Attempt *checkoutsvc.Attempt  `json:"attempt"`
	Payment *upstream.PaymentInit `json:"payment"`
}
