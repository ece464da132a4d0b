package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/domain/dto"
	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/guttosm/macro-service/internal/i18n"
	"github.com/guttosm/macro-service/internal/lookup"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/guttosm/macro-service/internal/share"
	"github.com/guttosm/macro-service/internal/store"
)

type errorMapping struct {
	target error
	status int
	key    string
}

// domainErrors is checked in order with errors.Is.
var domainErrors = []errorMapping{
	{model.ErrProductNotFound, http.StatusNotFound, i18n.ErrKeyProductNotFound},
	{model.ErrPlanNotFound, http.StatusNotFound, i18n.ErrKeyPlanNotFound},
	{model.ErrMealNotFound, http.StatusNotFound, i18n.ErrKeyMealNotFound},
	{model.ErrItemNotFound, http.StatusNotFound, i18n.ErrKeyItemNotFound},

	{model.ErrInvalidProduct, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidProduct},
	{model.ErrInvalidItem, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidItem},
	{model.ErrInvalidProfile, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidProfile},
	{model.ErrInvalidPriority, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidPriority},
	{service.ErrInvalidName, http.StatusUnprocessableEntity, i18n.ErrKeyInvalidName},
	{service.ErrInvalidSortKey, http.StatusBadRequest, i18n.ErrKeyInvalidSortKey},
	{service.ErrNoProducts, http.StatusConflict, i18n.ErrKeyNoProducts},
	{store.ErrEmptyPlanner, http.StatusUnprocessableEntity, i18n.ErrKeyLastPlan},

	{share.ErrEmptyLink, http.StatusBadRequest, i18n.ErrKeyEmptyShareLink},
	{share.ErrInvalidLink, http.StatusBadRequest, i18n.ErrKeyInvalidShareLink},
	{service.ErrInvalidImport, http.StatusBadRequest, i18n.ErrKeyInvalidImport},
	{service.ErrUnknownTransferKind, http.StatusNotFound, i18n.ErrKeyUnknownTransfer},
	{service.ErrInvalidSessionMode, http.StatusBadRequest, i18n.ErrKeyInvalidSessionMode},
	{service.ErrEmptyLabel, http.StatusBadRequest, i18n.ErrKeyEmptyLabel},

	{circuitbreaker.ErrCircuitOpen, http.StatusServiceUnavailable, i18n.ErrKeyLookupUnavailable},
	{lookup.ErrUpstream, http.StatusServiceUnavailable, i18n.ErrKeyLookupUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, i18n.ErrKeyTimeout},
}

// statusFor maps err to an HTTP status and message key. Unknown errors
// are internal.
func statusFor(err error) (int, string) {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, i18n.ErrKeyInvalidRequest
	}
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return m.status, m.key
		}
	}
	return http.StatusInternalServerError, i18n.ErrKeyInternalError
}
