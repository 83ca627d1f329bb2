package controllers

import (
	"net/http"

	"github.com/jewelryoclock/storefront-backend/api/responses"
	"github.com/jewelryoclock/storefront-backend/api/validators"
	"github.com/jewelryoclock/storefront-backend/internal/describe"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/logger"
)

type describeRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	Keywords string `json:"keywords"`
}

// DescribeProduct drafts marketing copy for a product listing.
func DescribeProduct(svc describe.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "describe service unavailable"))
			return
		}

		var payload describeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestion, err := svc.Suggest(r.Context(), describe.SuggestInput{
			Name:     payload.Name,
			Category: payload.Category,
			Keywords: payload.Keywords,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestion)
	}
}
