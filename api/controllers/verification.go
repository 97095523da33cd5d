package controllers

import (
	"net/http"

	"github.com/ersha-ecosystem/storefront/api/responses"
	"github.com/ersha-ecosystem/storefront/internal/verification"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

type verificationAuthorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type verificationCallbackResponse struct {
	*backend.VerificationResult
	RedirectTo string `json:"redirect_to"`
}

// VerificationAuthorize returns the identity provider URL for the client to
// navigate to. With ?redirect=1 it answers with a 302 instead.
func VerificationAuthorize(svc verification.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}
		target, err := svc.Authorize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if wantsRedirect(r) {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		responses.WriteSuccess(w, verificationAuthorizeResponse{AuthorizationURL: target})
	}
}

// VerificationCallback completes the round trip. redirectTo is where the
// client should navigate once the result is shown.
func VerificationCallback(svc verification.Service, redirectTo string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verification service unavailable"))
			return
		}
		q := r.URL.Query()
		res, err := svc.Callback(r.Context(), verification.CallbackParams{
			Code:             q.Get("code"),
			State:            q.Get("state"),
			Error:            q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verificationCallbackResponse{VerificationResult: res, RedirectTo: redirectTo})
	}
}

func wantsRedirect(r *http.Request) bool {
	switch r.URL.Query().Get("redirect") {
	case "1", "true":
		return true
	}
	return false
}
