package ingest

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/normalize"
)

// FromPayload converts one feed row into a Record. Values pass through
// the same normalizers as scraped fields so feed and scrape rows are
// comparable at resolution time.
func FromPayload(payload map[string]any, source string) *model.Record {
	rec := &model.Record{
		SourceURL: normalize.SourceURL(lookupString(payload, "source_url")),
		Source:    source,
		Name:      normalize.Collapse(lookupString(payload, "name")),
		Address:   normalize.Address(lookupString(payload, "address")),
		Phone:     normalize.Phone(lookupString(payload, "phone")),
		Website:   normalize.Website(lookupString(payload, "website")),
		Category:  normalize.Collapse(lookupString(payload, "category")),
		Budget:    normalize.Collapse(lookupString(payload, "budget")),
		Holiday:   normalize.Collapse(lookupString(payload, "holiday")),
	}
	rec.BusinessHours = normalize.Collapse(lookupString(payload, "hours"))

	if r, ok := lookupFloat(payload, "rating"); ok {
		rec.Rating = &r
	}
	if n, ok := lookupFloat(payload, "review_count"); ok {
		count := int(n)
		rec.ReviewCount = &count
	}
	if lat, ok := lookupFloat(payload, "latitude"); ok {
		rec.Latitude = &lat
	}
	if lng, ok := lookupFloat(payload, "longitude"); ok {
		rec.Longitude = &lng
	}
	if b, ok := lookupBool(payload, "takeout"); ok {
		rec.TakeoutAvailable = &b
	}
	if b, ok := lookupBool(payload, "delivery"); ok {
		rec.DeliveryAvailable = &b
	}
	rec.DeliveryServices = lookupStringSlice(payload, "delivery_services")
	return rec
}

// FromJSONFile reads a JSON file holding an array of feed payloads.
func FromJSONFile(path, source string) ([]*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return FromJSON(f, source)
}

// FromJSON decodes an array of feed payloads from r.
func FromJSON(r io.Reader, source string) ([]*model.Record, error) {
	var payloads []map[string]any
	if err := json.NewDecoder(r).Decode(&payloads); err != nil {
		return nil, eris.Wrap(err, "ingest: decode json feed")
	}

	records := make([]*model.Record, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, FromPayload(p, source))
	}
	return records, nil
}
