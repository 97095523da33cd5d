package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ersha-ecosystem/storefront/api/middleware"
	"github.com/ersha-ecosystem/storefront/api/responses"
	"github.com/ersha-ecosystem/storefront/api/validators"
	checkoutsvc "github.com/ersha-ecosystem/storefront/internal/checkout"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

// CartPagePath is where an empty-cart checkout sends the browser.
const CartPagePath = "/api/v1/cart"

// CheckoutFlows scopes checkout attempts to one session.
type CheckoutFlows interface {
	Acquire(key string) *checkoutsvc.Flow
	Release(key string, flow *checkoutsvc.Flow)
}

// CheckoutPrepare returns the prefilled form, providers and cart, or sends an
// empty cart back to the cart page.
func CheckoutPrepare(carts CartSessions, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store, err := sessionStore(carts, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := store.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if summary.IsEmpty() {
			http.Redirect(w, r, CartPagePath, http.StatusSeeOther)
			return
		}
		prepared, err := svc.Prepare(r.Context(), summary)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prepared)
	}
}

// CheckoutSubmit places the order and answers with the auto-submitting
// payment form. ?format=json returns the form description instead.
func CheckoutSubmit(carts CartSessions, flows CheckoutFlows, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || flows == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		store, err := sessionStore(carts, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var form checkoutsvc.FormData
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		key := middleware.SessionKeyFromContext(r.Context())
		flow := flows.Acquire(key)
		defer flows.Release(key, flow)

		summary, err := store.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pf, err := svc.Submit(r.Context(), flow, summary, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.EqualFold(r.URL.Query().Get("format"), "json") {
			responses.WriteSuccessStatus(w, http.StatusCreated, pf)
			return
		}
		if err := responses.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
			return pf.RenderHTML(out)
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render payment form"))
		}
	}
}

func CheckoutPending(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		txRef := strings.TrimSpace(chi.URLParam(r, "txRef"))
		if txRef == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tx_ref is required"))
			return
		}
		pending, err := svc.PendingOrder(r.Context(), txRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}
