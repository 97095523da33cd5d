package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ersha-ecosystem/storefront/api/responses"
	"github.com/ersha-ecosystem/storefront/api/validators"
	"github.com/ersha-ecosystem/storefront/internal/notifications"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

func NotificationsList(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultNotificationLimit, 1, maxNotificationLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly := false
		if raw := strings.TrimSpace(r.URL.Query().Get("unread_only")); raw != "" {
			unreadOnly, err = strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unread_only must be a boolean").WithDetails(map[string]any{"field": "unread_only"}))
				return
			}
		}

		result, err := svc.List(r.Context(), notifications.ListParams{Limit: limit, UnreadOnly: unreadOnly})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
