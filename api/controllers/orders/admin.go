package orders

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/foreverlabs/storefront-backend/api/responses"
	"github.com/foreverlabs/storefront-backend/api/validators"
	internalorders "github.com/foreverlabs/storefront-backend/internal/orders"
	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/logger"
	"github.com/foreverlabs/storefront-backend/pkg/pagination"
)

// AdminList returns every order, filtered and paged through the projection:
// optional status filter, customer-name search, date sort, page window.
func AdminList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		projection, err := buildProjection(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		all, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}

		page := make([]models.Order, 0, projection.Page.PageSize)
		for order := range projection.Apply(all) {
			page = append(page, order)
		}

		responses.WriteSuccess(w, page)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminUpdateStatus moves an order to the requested lifecycle status.
func AdminUpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", payload.Status)))
			return
		}

		updated, err := svc.Transition(r.Context(), internalorders.TransitionInput{
			OrderID: orderID,
			Target:  target,
			Actor: internalorders.ActorRef{
				UserID: userID,
				Role:   enums.ActorRoleAdmin,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

func buildProjection(r *http.Request) (internalorders.Projection, error) {
	var projection internalorders.Projection

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return projection, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid status %q", raw))
		}
		projection.Status = &status
	}

	projection.SearchText = strings.TrimSpace(r.URL.Query().Get("q"))

	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort"))) {
	case "", string(internalorders.SortNewestFirst):
		projection.Sort = internalorders.SortNewestFirst
	case string(internalorders.SortOldestFirst):
		projection.Sort = internalorders.SortOldestFirst
	default:
		return projection, pkgerrors.New(pkgerrors.CodeValidation, "sort must be newest or oldest")
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return projection, err
	}
	pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
	if err != nil {
		return projection, err
	}
	projection.Page = pagination.Params{Page: page, PageSize: pageSize}

	return projection, nil
}
