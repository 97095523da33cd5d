package controllers

import (
	"context"
	"net/http"

	"github.com/ersha-ecosystem/storefront/api/responses"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

type LogisticsLister interface {
	ListLogisticsProviders(ctx context.Context) ([]backend.LogisticsProvider, error)
}

func LogisticsProviders(lister LogisticsLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "logistics service unavailable"))
			return
		}
		providers, err := lister.ListLogisticsProviders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, providers)
	}
}
