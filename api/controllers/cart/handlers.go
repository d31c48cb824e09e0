package cart

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/api/middleware"
	"github.com/foreverlabs/storefront-backend/api/responses"
	"github.com/foreverlabs/storefront-backend/api/validators"
	internalcart "github.com/foreverlabs/storefront-backend/internal/cart"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/logger"
)

type upsertEntryRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Size      string `json:"size" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required,min=0"`
}

// UpsertEntry sets the quantity for one (product, size) entry of the caller's
// server cart. Quantity zero removes the entry.
func UpsertEntry(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload upsertEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		result, err := svc.UpsertEntry(r.Context(), internalcart.UpsertInput{
			UserID:    userID,
			ProductID: productID,
			Size:      payload.Size,
			Quantity:  *payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"cart":   result.Cart,
			"change": result.Change,
		})
	}
}

// Fetch returns the caller's full server cart.
func Fetch(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.Fetch(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"cart": data})
	}
}

// Clear empties the caller's server cart.
func Clear(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}
