// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"net/url"
	"strings"

	"github.com/guttosm/macro-service/internal/domain/model"
)

// ValidationError is a field-level request error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrPayloadRequired is returned when a share request has neither payload nor URL.
	ErrPayloadRequired = &ValidationError{Field: "payload", Message: "payload or url is required"}
	// ErrLinkWithoutPayload is returned for a URL with no share parameter.
	ErrLinkWithoutPayload = &ValidationError{Field: "url", Message: "link has no share parameter"}
)

// RenameRequest renames a plan or meal.
// @Description New plan or meal name
type RenameRequest struct {
	Name string `json:"name" binding:"required" example:"Workout Day"`
} // @name RenameRequest

// AddMealRequest positions a new meal. A missing After appends it.
// @Description Position of the new meal
type AddMealRequest struct {
	After *int `json:"after,omitempty" example:"0"`
} // @name AddMealRequest

// PriorityRequest sets a meal's auto-balance macro. Empty clears it.
// @Description Meal auto-balance priority
type PriorityRequest struct {
	Priority model.MacroKind `json:"priority" example:"protein" enums:"protein,carbs,fat"`
} // @name PriorityRequest

// BalanceRequest runs auto-balance on one meal.
// @Description Auto-balance options
type BalanceRequest struct {
	// Target overrides the even split of the plan profile.
	Target   *model.Macros   `json:"target,omitempty"`
	Priority model.MacroKind `json:"priority,omitempty" example:"fat" enums:"protein,carbs,fat"`
} // @name BalanceRequest

// ShareLinkRequest builds a share link on an optional base address.
// @Description Share link options
type ShareLinkRequest struct {
	BaseURL string `json:"base_url,omitempty" example:"https://greenmacros.app/"`
} // @name ShareLinkRequest

// SharePayloadRequest carries a share payload, either raw or inside a link.
// @Description Share payload or full share link
type SharePayloadRequest struct {
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty" example:"https://greenmacros.app/?s=..."`
} // @name SharePayloadRequest

// Resolve returns the payload, reading the "s" parameter from URL when
// Payload is empty.
func (r *SharePayloadRequest) Resolve(param string) (string, error) {
	if p := strings.TrimSpace(r.Payload); p != "" {
		return p, nil
	}
	if strings.TrimSpace(r.URL) == "" {
		return "", ErrPayloadRequired
	}
	u, err := url.Parse(strings.TrimSpace(r.URL))
	if err != nil {
		return "", &ValidationError{Field: "url", Message: err.Error()}
	}
	p := u.Query().Get(param)
	if p == "" {
		return "", ErrLinkWithoutPayload
	}
	return p, nil
}

// SessionStartRequest applies the first-run choice.
// @Description First-run choice
type SessionStartRequest struct {
	Mode    string `json:"mode" binding:"required" example:"preset" enums:"fresh,preset,import"`
	Payload string `json:"payload,omitempty"`
} // @name SessionStartRequest

// LabelRequest carries pasted nutrition-label text.
// @Description Nutrition label text
type LabelRequest struct {
	Text string `json:"text" binding:"required" example:"Nutrition Facts\nServing size 32g\nCalories 190"`
} // @name LabelRequest

// SortRequest reorders the product catalog.
// @Description Catalog sort order
type SortRequest struct {
	Key string `json:"key" binding:"required" example:"protein-desc" enums:"name-asc,name-desc,cal-asc,cal-desc,protein-asc,protein-desc,carbs-asc,carbs-desc,fat-asc,fat-desc"`
} // @name SortRequest
