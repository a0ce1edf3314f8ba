package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Validate(t *testing.T) {
	assert.NoError(t, (&Record{Phone: "0312345678"}).Validate())
	assert.NoError(t, (&Record{Name: "和食処たなか"}).Validate())

	err := (&Record{SourceURL: "https://example.com", Address: "東京都渋谷区"}).Validate()
	assert.True(t, eris.Is(err, ErrNoIdentity))

	err = (&Record{Phone: "  ", Name: " "}).Validate()
	assert.True(t, eris.Is(err, ErrNoIdentity))
}

func TestRecord_SetProvenance(t *testing.T) {
	r := &Record{}
	r.SetProvenance(FieldName, "title_pattern")
	r.SetProvenance(FieldPhone, "")
	assert.Equal(t, "title_pattern", r.Provenance[FieldName])
	_, ok := r.Provenance[FieldPhone]
	assert.False(t, ok)
}

func TestRecord_Attributes(t *testing.T) {
	rating := 3.58
	reviews := 124
	r := &Record{
		Name:          "和食処たなか",
		Phone:         "0312345678",
		Category:      "和食",
		Budget:        "￥1,000〜￥2,000",
		RelatedStores: []string{"たなか 渋谷店", "たなか 新宿店"},
		IsFranchise:   true,
		Rating:        &rating,
		ReviewCount:   &reviews,
	}

	attrs := r.Attributes()
	assert.Equal(t, "和食", attrs["category"])
	assert.Equal(t, "￥1,000〜￥2,000", attrs["budget"])
	assert.Equal(t, "たなか 渋谷店\nたなか 新宿店", attrs["related_stores"])
	assert.Equal(t, true, attrs["is_franchise"])
	assert.Equal(t, 3.58, attrs["rating"])
	assert.Equal(t, 124, attrs["review_count"])

	// Identity fields stay off the attribute map.
	_, ok := attrs["name"]
	assert.False(t, ok)
	_, ok = attrs["phone"]
	assert.False(t, ok)

	// Empty fields are omitted.
	_, ok = attrs["website"]
	assert.False(t, ok)
}

func TestRunReport_Counts(t *testing.T) {
	r := NewRunReport()
	r.Add(ItemResult{Outcome: OutcomeCreated})
	r.Add(ItemResult{Outcome: OutcomeCreated})
	r.Add(ItemResult{Outcome: OutcomeMerged})
	r.Add(ItemResult{Outcome: OutcomeSkipped})
	r.Add(ItemResult{Outcome: OutcomeErrored, Error: "fetch failed"})
	r.Finish()

	assert.Equal(t, 2, r.Created)
	assert.Equal(t, 1, r.Merged)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.Errored)
	assert.Equal(t, 5, r.Total())
	assert.Len(t, r.Items, 5)
}
