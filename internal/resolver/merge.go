package resolver

import (
	"github.com/restolead/catalog-cli/internal/model"
)

// MergePolicy folds an incoming record into an existing lead. Policies
// differ in how they treat conflicting non-empty values; none of them
// ever replaces a non-empty value with an empty one.
type MergePolicy func(lead *model.MasterLead, rec *model.Record, opts Options)

// MergeScrape is the policy for freshly scraped listing pages. The page
// is assumed current, so an incoming non-empty value wins over the
// stored one. Names move only when RefreshNames is set or the lead has
// none, since renaming a lead breaks downstream references.
func MergeScrape(lead *model.MasterLead, rec *model.Record, opts Options) {
	if rec.Name != "" && (opts.RefreshNames || lead.CompanyName == "") {
		lead.CompanyName = rec.Name
	}
	if rec.Phone != "" {
		lead.Phone = rec.Phone
	}
	if rec.Address != "" {
		lead.Address = rec.Address
	}
	if rec.Source != "" {
		lead.Source = rec.Source
	}

	mergeAttributes(lead, rec, func(existing, incoming any) any {
		if isEmptyValue(incoming) {
			return existing
		}
		return incoming
	})
}

// MergeFeed is the policy for bulk feed rows. Feeds are often stale or
// truncated, so for free-text values the longer string wins and
// identity fields only fill gaps.
func MergeFeed(lead *model.MasterLead, rec *model.Record, opts Options) {
	if lead.CompanyName == "" {
		lead.CompanyName = rec.Name
	}
	if lead.Phone == "" {
		lead.Phone = rec.Phone
	}
	if lead.Address == "" {
		lead.Address = rec.Address
	}
	if lead.Source == "" {
		lead.Source = rec.Source
	}

	mergeAttributes(lead, rec, func(existing, incoming any) any {
		if isEmptyValue(incoming) {
			return existing
		}
		es, eok := existing.(string)
		is, iok := incoming.(string)
		if eok && iok {
			if len(is) > len(es) {
				return is
			}
			return es
		}
		if isEmptyValue(existing) {
			return incoming
		}
		return existing
	})
}

// mergeAttributes applies pick to every incoming attribute against the
// lead's stored attributes.
func mergeAttributes(lead *model.MasterLead, rec *model.Record, pick func(existing, incoming any) any) {
	incoming := rec.Attributes()
	if len(incoming) == 0 {
		return
	}
	if lead.Attributes == nil {
		lead.Attributes = map[string]any{}
	}
	for key, value := range incoming {
		lead.Attributes[key] = pick(lead.Attributes[key], value)
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
