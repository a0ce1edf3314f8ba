package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/restolead/catalog-cli/internal/model"
)

// FromCSVFile reads a CSV feed file. Layout matches FromXLSX: first row
// is the header, each data row becomes an alias-keyed payload.
func FromCSVFile(path, source string) ([]*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()
	return FromCSV(f, source)
}

// FromCSV decodes a CSV feed from r.
func FromCSV(r io.Reader, source string) ([]*model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv header")
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var records []*model.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		if allEmpty(row) {
			continue
		}
		payload := make(map[string]any, len(header))
		for i, key := range header {
			if key == "" || i >= len(row) {
				continue
			}
			payload[key] = row[i]
		}
		records = append(records, FromPayload(payload, source))
	}
	return records, nil
}
