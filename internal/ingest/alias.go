// Package ingest converts external feed payloads into records. Feed
// providers disagree on key names, so each concept carries an ordered
// alias list and the first present key wins.
package ingest

import (
	"strconv"
	"strings"
)

// aliases maps a canonical concept to feed key spellings, most specific
// first.
var aliases = map[string][]string{
	"name":         {"name", "store_name", "title", "company_name"},
	"phone":        {"phone_unformatted", "phone", "tel", "phone_number"},
	"address":      {"address", "full_address", "street_address", "street"},
	"source_url":   {"url", "source_url", "link"},
	"website":      {"website", "site", "homepage"},
	"category":     {"category", "category_name", "genre", "cuisine"},
	"rating":       {"total_score", "rating", "average_rating"},
	"review_count": {"reviews_count", "reviews", "review_count", "number_of_reviews"},
	"latitude":     {"latitude", "lat"},
	"longitude":    {"longitude", "lng", "lon"},
	"budget":       {"budget", "price_range", "price_level"},
	"hours":        {"business_hours", "opening_hours", "hours"},
	"holiday":      {"holiday", "closed_days"},

	// Delivery-platform capability fields.
	"takeout":           {"takeout_available", "pickup_available", "takeout"},
	"delivery":          {"delivery_available", "delivery"},
	"delivery_services": {"delivery_services", "order_services"},
}

// lookup returns the first alias of concept present and non-nil in the
// payload.
func lookup(payload map[string]any, concept string) (any, bool) {
	for _, key := range aliases[concept] {
		if v, ok := payload[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(payload map[string]any, concept string) string {
	v, ok := lookup(payload, concept)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func lookupBool(payload map[string]any, concept string) (bool, bool) {
	v, ok := lookup(payload, concept)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

func lookupStringSlice(payload map[string]any, concept string) []string {
	v, ok := lookup(payload, concept)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func lookupFloat(payload map[string]any, concept string) (float64, bool) {
	v, ok := lookup(payload, concept)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		// Spreadsheet feeds deliver numbers as cell text.
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
