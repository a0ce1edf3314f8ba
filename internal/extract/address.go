package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/normalize"
	"github.com/restolead/catalog-cli/internal/surface"
)

// bootstrapVars are the known client-side state objects delivery platforms
// embed in inline scripts.
var bootstrapVars = []string{"__NEXT_DATA__", "UBER_DATA", "__UBER_DATA__", "storeData"}

var (
	postalHintRe  = regexp.MustCompile(`\d{3}-?\d{4}`)
	citySuffixRe  = regexp.MustCompile(`[都道府県市区町村]`)
	addressSnipRe = regexp.MustCompile(`.{0,50}〒?\d{3}-?\d{4}\s*[^\s]{0,100}`)
)

// addressKeywords label address content in the DOM.
var addressKeywords = []string{"住所", "所在地", "Address", "ロケーション"}

// AddressChain builds the address extraction chain with its strict
// precedence: structured data, meta tags, bootstrap script state, DOM
// heuristics, and finally the site's label table.
func AddressChain() Chain {
	return Chain{
		Field: model.FieldAddress,
		Sanity: func(v string) bool {
			return len(v) >= 4 && len(v) <= 500
		},
		Strategies: []Strategy{
			{Name: "jsonld", Fn: addressFromStructuredData},
			{Name: "meta", Fn: addressFromMeta},
			{Name: "script_state", Fn: addressFromScriptState},
			{Name: "dom_heuristics", Fn: addressFromDOM},
			{Name: "table", Fn: func(s *surface.Surface) string {
				if v := s.TableValue("住所"); v != "" {
					return v
				}
				return s.TableValue("アクセス")
			}},
		},
	}
}

// addressFromStructuredData walks every JSON-LD block, preferring items
// typed Restaurant/FoodEstablishment/LocalBusiness but accepting any item
// carrying an address.
func addressFromStructuredData(s *surface.Surface) string {
	var typed, untyped []map[string]any

	for _, raw := range s.StructuredData() {
		for _, item := range flattenLD(raw) {
			if isBusinessType(item["@type"]) {
				typed = append(typed, item)
			} else {
				untyped = append(untyped, item)
			}
		}
	}

	for _, item := range append(typed, untyped...) {
		if addr := addressFromAny(item, 0); addr != "" {
			return addr
		}
	}
	return ""
}

// flattenLD expands a JSON-LD block into its item objects, unwrapping
// top-level arrays and @graph containers.
func flattenLD(raw json.RawMessage) []map[string]any {
	var any1 any
	if err := json.Unmarshal(raw, &any1); err != nil {
		return nil
	}
	switch v := any1.(type) {
	case []any:
		var items []map[string]any
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			var items []map[string]any
			for _, e := range graph {
				if m, ok := e.(map[string]any); ok {
					items = append(items, m)
				}
			}
			return append(items, v)
		}
		return []map[string]any{v}
	}
	return nil
}

func isBusinessType(t any) bool {
	match := func(s string) bool {
		return s == "Restaurant" || s == "FoodEstablishment" || s == "LocalBusiness"
	}
	switch v := t.(type) {
	case string:
		return match(v)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && match(s) {
				return true
			}
		}
	}
	return false
}

// addressFromAny searches an object graph for an address, either a plain
// string or a postal-address object whose parts are joined in order.
func addressFromAny(obj any, depth int) string {
	if depth > 5 {
		return ""
	}
	m, ok := obj.(map[string]any)
	if !ok {
		return ""
	}

	if addr, ok := m["address"]; ok {
		if s := renderAddress(addr); s != "" {
			return s
		}
	}
	for _, key := range []string{"location", "store"} {
		if nested, ok := m[key]; ok {
			if s := addressFromAny(nested, depth+1); s != "" {
				return s
			}
		}
	}
	return ""
}

func renderAddress(addr any) string {
	switch v := addr.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"formattedAddress", "fullAddress"} {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s, ok := v[key].(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

// addressFromMeta scans description-class meta tags for address-shaped
// content.
func addressFromMeta(s *surface.Surface) string {
	for _, key := range []string{"og:description", "description", "og:street-address", "og:locality"} {
		content := s.Meta(key)
		if content == "" {
			continue
		}
		if m := addressSnipRe.FindString(content); m != "" {
			return strings.TrimSpace(m)
		}
		if normalize.HasAddressAnchor(content) {
			return content
		}
	}
	return ""
}

// addressFromScriptState digs the known bootstrap state objects for
// address-bearing sub-objects.
func addressFromScriptState(s *surface.Surface) string {
	for _, raw := range s.ScriptState(bootstrapVars...) {
		var root any
		if err := json.Unmarshal(raw, &root); err != nil {
			continue
		}
		if addr := searchState(root, 0); addr != "" {
			return addr
		}
	}
	return ""
}

// searchState walks arbitrary bootstrap state breadth-first under common
// container keys, bounded by depth.
func searchState(obj any, depth int) string {
	if depth > 6 {
		return ""
	}
	m, ok := obj.(map[string]any)
	if !ok {
		return ""
	}
	if addr := addressFromAny(m, 0); addr != "" {
		return addr
	}
	for _, key := range []string{"props", "pageProps", "initialState", "data", "query", "state"} {
		if nested, ok := m[key]; ok {
			if addr := searchState(nested, depth+1); addr != "" {
				return addr
			}
		}
	}
	return ""
}

// addressFromDOM tries keyword proximity, map-link proximity, icon/class
// proximity, and a full-text scan, in that order.
func addressFromDOM(s *surface.Surface) string {
	if addr := addressByKeyword(s); addr != "" {
		return addr
	}
	if addr := addressByMapLink(s); addr != "" {
		return addr
	}
	if addr := addressByClassHint(s); addr != "" {
		return addr
	}
	return addressByFullText(s)
}

func addressByKeyword(s *surface.Surface) string {
	var found string
	s.Find("th,dt,span,div,p,li").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		own := strings.TrimSpace(sel.Text())
		if len(own) == 0 || len(own) > 200 {
			return true
		}
		for _, kw := range addressKeywords {
			if !strings.Contains(own, kw) {
				continue
			}
			parent := sel.Parent()
			if parent.Length() == 0 {
				continue
			}
			text := strings.TrimSpace(parent.Text())
			if !postalHintRe.MatchString(text) {
				continue
			}
			if idx := strings.Index(text, kw); idx >= 0 {
				candidate := strings.TrimSpace(text[idx+len(kw):])
				candidate = strings.SplitN(candidate, "\n", 2)[0]
				if len(candidate) > 5 && len(candidate) < 200 {
					found = candidate
					return false
				}
			}
		}
		return true
	})
	return found
}

func addressByMapLink(s *surface.Surface) string {
	var found string
	s.Find(`a[href*="maps.google.com"], a[href*="google.com/maps"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for _, candidate := range []string{sel.Text(), sel.Parent().Text()} {
			text := strings.TrimSpace(candidate)
			if len(text) > 5 && len(text) < 300 && postalHintRe.MatchString(text) {
				if m := addressSnipRe.FindString(text); m != "" {
					found = strings.TrimSpace(m)
				} else {
					found = text
				}
				return false
			}
		}
		return true
	})
	return found
}

func addressByClassHint(s *surface.Surface) string {
	selectors := []string{
		`[data-testid*="address"]`,
		`[data-testid*="location"]`,
		`[class*="address"]`,
		`[class*="location"]`,
		`[aria-label*="住所"]`,
	}
	for _, selector := range selectors {
		var found string
		s.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := strings.TrimSpace(sel.Text())
			if len(text) <= 5 || len(text) >= 200 {
				return true
			}
			if postalHintRe.MatchString(text) || (normalize.HasAddressAnchor(text) && citySuffixRe.MatchString(text)) {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func addressByFullText(s *surface.Surface) string {
	text := s.FullText()
	if m := addressSnipRe.FindString(text); m != "" && citySuffixRe.MatchString(m) {
		return strings.TrimSpace(m)
	}
	return ""
}
