// Package model defines the core data types shared across the catalog pipeline.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoIdentity is returned when a record carries no usable identity
// signal (neither phone nor name) and cannot be resolved.
var ErrNoIdentity = eris.New("model: record has no phone and no name")

// Field identifies a logical extraction field.
type Field string

const (
	FieldName          Field = "name"
	FieldAddress       Field = "address"
	FieldPhone         Field = "phone"
	FieldCategory      Field = "category"
	FieldOpenDate      Field = "open_date"
	FieldHoliday       Field = "regular_holiday"
	FieldTransport     Field = "transport"
	FieldBusinessHours Field = "business_hours"
	FieldBudget        Field = "budget"
	FieldWebsite       Field = "website"
	FieldRelatedStores Field = "related_stores"
)

// RawFieldValue is an extracted-but-unvalidated value plus the name of the
// strategy that produced it. It lives only inside one extraction pass.
type RawFieldValue struct {
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	Strategy string `json:"strategy"`
}

// Record is the normalized output of one extraction pass for one URL.
// Every populated field has already passed its normalizer: Phone and
// Address are either empty or canonical, never raw page text.
type Record struct {
	SourceURL     string   `json:"source_url"`
	Source        string   `json:"source"` // adapter or feed name
	Name          string   `json:"name,omitempty"`
	Address       string   `json:"address,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Category      string   `json:"category,omitempty"`
	OpenDate      string   `json:"open_date,omitempty"`
	Holiday       string   `json:"regular_holiday,omitempty"`
	Transport     string   `json:"transport,omitempty"`
	BusinessHours string   `json:"business_hours,omitempty"`
	Budget        string   `json:"budget,omitempty"`
	Website       string   `json:"website,omitempty"`
	RelatedStores []string `json:"related_stores,omitempty"`
	IsFranchise   bool     `json:"is_franchise"`

	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`

	// Delivery-platform capability flags carried by bulk feeds.
	TakeoutAvailable  *bool    `json:"takeout_available,omitempty"`
	DeliveryAvailable *bool    `json:"delivery_available,omitempty"`
	DeliveryServices  []string `json:"delivery_services,omitempty"`

	// Provenance of each populated field, keyed by field name.
	Provenance map[Field]string `json:"provenance,omitempty"`
}

// Validate checks that the record carries at least one identity signal.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Phone) == "" && strings.TrimSpace(r.Name) == "" {
		return ErrNoIdentity
	}
	return nil
}

// SetProvenance records which strategy produced a field value.
func (r *Record) SetProvenance(f Field, strategy string) {
	if strategy == "" {
		return
	}
	if r.Provenance == nil {
		r.Provenance = make(map[Field]string)
	}
	r.Provenance[f] = strategy
}

// Attributes flattens the record's non-identity fields into the open
// attribute map stored on a MasterLead. Empty values are omitted.
func (r *Record) Attributes() map[string]any {
	attrs := make(map[string]any)
	put := func(key, val string) {
		if val != "" {
			attrs[key] = val
		}
	}
	put("category", r.Category)
	put("open_date", r.OpenDate)
	put("regular_holiday", r.Holiday)
	put("transport", r.Transport)
	put("business_hours", r.BusinessHours)
	put("budget", r.Budget)
	put("website", r.Website)
	if len(r.RelatedStores) > 0 {
		attrs["related_stores"] = strings.Join(r.RelatedStores, "\n")
	}
	attrs["is_franchise"] = r.IsFranchise
	if r.Latitude != nil {
		attrs["latitude"] = *r.Latitude
	}
	if r.Longitude != nil {
		attrs["longitude"] = *r.Longitude
	}
	if r.Rating != nil {
		attrs["rating"] = *r.Rating
	}
	if r.ReviewCount != nil {
		attrs["review_count"] = *r.ReviewCount
	}
	if r.TakeoutAvailable != nil {
		attrs["takeout_available"] = *r.TakeoutAvailable
	}
	if r.DeliveryAvailable != nil {
		attrs["delivery_available"] = *r.DeliveryAvailable
	}
	if len(r.DeliveryServices) > 0 {
		attrs["delivery_services"] = strings.Join(r.DeliveryServices, ", ")
	}
	return attrs
}
