package checkout

import (
	"strings"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

// SelectProvider resolves the single provider chosen on the form from the
// fetched reference list.
func SelectProvider(providers []backend.LogisticsProvider, id string) (backend.LogisticsProvider, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return backend.LogisticsProvider{}, fieldError("logistics_provider_id", "Please select a logistics provider")
	}
	for _, p := range providers {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return backend.LogisticsProvider{}, pkgerrors.New(pkgerrors.CodeValidation, "selected logistics provider is not available").
		WithDetails(map[string]any{"field": "logistics_provider_id", "logistics_provider_id": id})
}
