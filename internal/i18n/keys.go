// Package i18n translates user-facing messages of the macro service.
package i18n

// Error message translation keys.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyNotFound           = "error.not_found"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyConflict           = "error.conflict"
	ErrKeyTimeout            = "error.timeout"

	ErrKeyProductNotFound = "error.product_not_found"
	ErrKeyPlanNotFound    = "error.plan_not_found"
	ErrKeyMealNotFound    = "error.meal_not_found"
	ErrKeyItemNotFound    = "error.item_not_found"
	ErrKeyInvalidProduct  = "error.invalid_product"
	ErrKeyInvalidItem     = "error.invalid_item"
	ErrKeyInvalidProfile  = "error.invalid_profile"
	ErrKeyInvalidPriority = "error.invalid_priority"
	ErrKeyInvalidName     = "error.invalid_name"
	ErrKeyInvalidSortKey  = "error.invalid_sort_key"
	ErrKeyNoProducts      = "error.no_products"
	// ErrKeyLastPlan is used when an edit would leave the planner without plans.
	ErrKeyLastPlan = "error.last_plan"

	ErrKeyInvalidShareLink   = "error.invalid_share_link"
	ErrKeyEmptyShareLink     = "error.empty_share_link"
	ErrKeyInvalidImport      = "error.invalid_import"
	ErrKeyUnknownTransfer    = "error.unknown_transfer_kind"
	ErrKeyInvalidSessionMode = "error.invalid_session_mode"
	ErrKeyEmptyLabel         = "error.empty_label"
	ErrKeyLookupUnavailable  = "error.lookup_unavailable"
)

// Success message translation keys.
const (
	SuccessKeyShareImported = "success.share_imported"
	SuccessKeyFileImported  = "success.file_imported"
)
