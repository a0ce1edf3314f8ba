package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/extract"
	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/normalize"
	"github.com/restolead/catalog-cli/internal/surface"
)

// AppStateSite handles delivery platforms that render from a bootstrap
// JSON blob (UberEats and its lookalikes). The store object embedded in
// the page state is the primary source; DOM chains only fill what the
// state misses. The URL is canonicalized before fetching so tracking
// query params never leak into SourceURL.
type AppStateSite struct {
	name       string
	hosts      []string
	stateVars  []string
	fetcher    surface.Fetcher
	classifier normalize.FranchiseClassifier
	log        *zap.Logger

	nameChain    extract.Chain
	addressChain extract.Chain
	phoneChain   extract.Chain
}

// AppStateSiteOptions configures an AppStateSite adapter.
type AppStateSiteOptions struct {
	Name      string
	Hosts     []string
	StateVars []string
	Chains    *extract.ChainConfig
}

// NewAppStateSite builds an app-state adapter.
func NewAppStateSite(opts AppStateSiteOptions, fetcher surface.Fetcher, classifier normalize.FranchiseClassifier) *AppStateSite {
	a := &AppStateSite{
		name:       opts.Name,
		hosts:      opts.Hosts,
		stateVars:  opts.StateVars,
		fetcher:    fetcher,
		classifier: classifier,
		log:        zap.L().Named("adapter").With(zap.String("site", opts.Name)),

		nameChain:    extract.NameChain(),
		addressChain: extract.AddressChain(),
		phoneChain:   extract.PhoneChain(""),
	}
	if opts.Chains != nil {
		for _, c := range []*extract.Chain{&a.nameChain, &a.addressChain, &a.phoneChain} {
			*c = opts.Chains.Apply(opts.Name, *c)
		}
	}
	return a
}

func (a *AppStateSite) Name() string { return a.name }

func (a *AppStateSite) Supports(rawURL string) bool {
	return hostMatches(rawURL, a.hosts)
}

// Extract canonicalizes the URL, fetches the page, and reads the store
// object from the bootstrap state, falling back to the DOM chains.
func (a *AppStateSite) Extract(ctx context.Context, rawURL string) (*model.Record, error) {
	cleanURL := normalize.SourceURL(rawURL)
	html, err := a.fetcher.Fetch(ctx, cleanURL)
	if err != nil {
		return nil, eris.Wrapf(err, "adapter: fetch %s", cleanURL)
	}
	s, err := surface.Parse(html, cleanURL)
	if err != nil {
		return nil, eris.Wrapf(err, "adapter: parse %s", cleanURL)
	}

	rec := &model.Record{
		SourceURL:  cleanURL,
		Source:     a.name,
		Provenance: map[model.Field]string{},
	}

	store := a.storeState(s)
	if store != nil {
		a.fillFromState(rec, store)
	}

	if rec.Name == "" {
		if v, ok := a.nameChain.Run(s); ok {
			rec.Name = normalize.Collapse(v.Value)
			rec.SetProvenance(model.FieldName, v.Strategy)
		}
	}
	if rec.Address == "" {
		if v, ok := a.addressChain.Run(s); ok {
			rec.Address = normalize.Address(v.Value)
			rec.SetProvenance(model.FieldAddress, v.Strategy)
		}
	}
	if rec.Phone == "" {
		if v, ok := a.phoneChain.Run(s); ok {
			rec.Phone = normalize.Phone(v.Value)
			rec.SetProvenance(model.FieldPhone, v.Strategy)
		}
	}

	rec.Name = stripPlatformSuffix(rec.Name)
	rec.IsFranchise = a.classifier.IsFranchise(rec.Name, rec.RelatedStores)

	a.log.Debug("extracted record",
		zap.String("url", cleanURL),
		zap.String("name", rec.Name),
		zap.Bool("state", store != nil))
	return rec, nil
}

// storeState finds the store-shaped object inside the bootstrap JSON. A
// map qualifies when it carries a name-like key next to an address,
// location, or phone key.
func (a *AppStateSite) storeState(s *surface.Surface) map[string]any {
	for _, raw := range s.ScriptState(a.stateVars...) {
		var root any
		if err := json.Unmarshal(raw, &root); err != nil {
			continue
		}
		if found := findStoreObject(root, 0); found != nil {
			return found
		}
	}
	return nil
}

const maxStateDepth = 8

func findStoreObject(node any, depth int) map[string]any {
	if depth > maxStateDepth {
		return nil
	}
	switch v := node.(type) {
	case map[string]any:
		if looksLikeStore(v) {
			return v
		}
		for _, key := range []string{"store", "storeInfo", "data", "props", "pageProps", "initialState", "queries", "state"} {
			if child, ok := v[key]; ok {
				if found := findStoreObject(child, depth+1); found != nil {
					return found
				}
			}
		}
		for _, child := range v {
			if found := findStoreObject(child, depth+1); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range v {
			if found := findStoreObject(child, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func looksLikeStore(m map[string]any) bool {
	hasName := stringKey(m, "title") != "" || stringKey(m, "name") != "" || stringKey(m, "displayName") != ""
	if !hasName {
		return false
	}
	if _, ok := m["location"]; ok {
		return true
	}
	if _, ok := m["address"]; ok {
		return true
	}
	return stringKey(m, "phoneNumber") != "" || stringKey(m, "phone") != ""
}

// fillFromState copies the store object's fields onto the Record,
// normalizing as it goes.
func (a *AppStateSite) fillFromState(rec *model.Record, store map[string]any) {
	if name := firstStringKey(store, "title", "name", "displayName"); name != "" {
		rec.Name = normalize.Collapse(name)
		rec.SetProvenance(model.FieldName, "script_state")
	}
	if addr := stateAddress(store); addr != "" {
		rec.Address = normalize.Address(addr)
		rec.SetProvenance(model.FieldAddress, "script_state")
	}
	if phone := firstStringKey(store, "phoneNumber", "phone", "contactPhone"); phone != "" {
		rec.Phone = normalize.Phone(phone)
		rec.SetProvenance(model.FieldPhone, "script_state")
	}
	if price := firstStringKey(store, "priceBucket", "priceRange"); price != "" {
		rec.Budget = normalize.BudgetTier(price)
		rec.SetProvenance(model.FieldBudget, "script_state")
	}
	if cats := stringSliceKey(store, "categories", "cuisineList"); len(cats) > 0 {
		rec.Category = strings.Join(cats, "/")
	}
	if r, ok := floatKey(store, "rating", "ratingValue"); ok {
		rec.Rating = &r
	} else if nested, ok := store["rating"].(map[string]any); ok {
		if r, ok := floatKey(nested, "ratingValue", "value"); ok {
			rec.Rating = &r
		}
		if n, ok := floatKey(nested, "reviewCount", "ratingCount"); ok {
			count := int(n)
			rec.ReviewCount = &count
		}
	}
	if n, ok := floatKey(store, "reviewCount", "numRatings"); ok {
		count := int(n)
		rec.ReviewCount = &count
	}
	if loc, ok := store["location"].(map[string]any); ok {
		if lat, ok := floatKey(loc, "latitude", "lat"); ok {
			rec.Latitude = &lat
		}
		if lng, ok := floatKey(loc, "longitude", "lng"); ok {
			rec.Longitude = &lng
		}
	}
	if b, ok := boolKey(store, "isDeliveryAvailable", "deliveryAvailable"); ok {
		rec.DeliveryAvailable = &b
	}
	if b, ok := boolKey(store, "isTakeoutAvailable", "pickupAvailable", "takeoutAvailable"); ok {
		rec.TakeoutAvailable = &b
	}
	if brand := firstStringKey(store, "brandName", "chainName", "franchiseName", "sectionName"); brand != "" {
		rec.RelatedStores = append(rec.RelatedStores, normalize.Collapse(brand))
	}
}

func stateAddress(store map[string]any) string {
	switch addr := store["address"].(type) {
	case string:
		return addr
	case map[string]any:
		if s := firstStringKey(addr, "formattedAddress", "fullAddress", "address1", "streetAddress"); s != "" {
			return s
		}
	}
	if loc, ok := store["location"].(map[string]any); ok {
		if s := firstStringKey(loc, "address", "formattedAddress", "streetAddress"); s != "" {
			return s
		}
		if nested, ok := loc["address"].(map[string]any); ok {
			return firstStringKey(nested, "formattedAddress", "fullAddress", "address1")
		}
	}
	return ""
}

// stripPlatformSuffix drops trailing platform decorations from store
// names, e.g. "Burger Shop (渋谷店) - Uber Eats".
func stripPlatformSuffix(name string) string {
	for _, suffix := range []string{" - Uber Eats", " | Uber Eats", " - 出前館", " - Wolt", " - menu"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

func stringKey(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstStringKey(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringKey(m, k); s != "" {
			return s
		}
	}
	return ""
}

func stringSliceKey(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		raw, ok := m[k].([]any)
		if !ok {
			continue
		}
		var out []string
		for _, item := range raw {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func floatKey(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok {
			return f, true
		}
	}
	return 0, false
}

func boolKey(m map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return b, true
		}
	}
	return false, false
}

var _ SourceAdapter = (*AppStateSite)(nil)

// DefaultAppStateSite returns the adapter wired for the known delivery
// platforms.
func DefaultAppStateSite(fetcher surface.Fetcher, cfg *extract.ChainConfig) *AppStateSite {
	return NewAppStateSite(AppStateSiteOptions{
		Name:      "ubereats",
		Hosts:     []string{"ubereats.com", "demaecan.com", "wolt.com"},
		StateVars: []string{"__NEXT_DATA__", "UBER_DATA", "__UBER_DATA__"},
		Chains:    cfg,
	}, fetcher, normalize.JapaneseRules{})
}
