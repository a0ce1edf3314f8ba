package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/restolead/catalog-cli/internal/model"
)

func TestMergeScrape_NonEmptyWins(t *testing.T) {
	lead := &model.MasterLead{
		CompanyName: "既存の店",
		Phone:       "0311112222",
		Address:     "旧住所",
		Source:      "tabelog",
		Attributes:  map[string]any{"category": "牛丼", "website": "https://old.example.com"},
	}
	rec := &model.Record{
		Name:    "別の店名",
		Phone:   "0399998888",
		Address: "東京都新宿区1-1",
		Source:  "gnavi",
		Website: "https://new.example.com",
	}

	MergeScrape(lead, rec, Options{})

	assert.Equal(t, "既存の店", lead.CompanyName) // names are sticky
	assert.Equal(t, "0399998888", lead.Phone)
	assert.Equal(t, "東京都新宿区1-1", lead.Address)
	assert.Equal(t, "gnavi", lead.Source)
	assert.Equal(t, "https://new.example.com", lead.Attributes["website"])
	// Incoming record has no category, the stored one survives.
	assert.Equal(t, "牛丼", lead.Attributes["category"])
}

func TestMergeScrape_EmptyNeverErases(t *testing.T) {
	lead := &model.MasterLead{Phone: "0311112222", Address: "東京都"}
	MergeScrape(lead, &model.Record{Name: "店"}, Options{})
	assert.Equal(t, "0311112222", lead.Phone)
	assert.Equal(t, "東京都", lead.Address)
	assert.Equal(t, "店", lead.CompanyName) // fills the gap
}

func TestMergeScrape_RefreshNames(t *testing.T) {
	lead := &model.MasterLead{CompanyName: "旧店名"}
	MergeScrape(lead, &model.Record{Name: "新店名"}, Options{RefreshNames: true})
	assert.Equal(t, "新店名", lead.CompanyName)
}

func TestMergeFeed_FillsIdentityGapsOnly(t *testing.T) {
	lead := &model.MasterLead{CompanyName: "既存の店", Phone: "0311112222"}
	rec := &model.Record{Name: "フィード店名", Phone: "0399990000", Address: "東京都台東区2-2", Source: "gmaps"}

	MergeFeed(lead, rec, Options{})

	assert.Equal(t, "既存の店", lead.CompanyName)
	assert.Equal(t, "0311112222", lead.Phone)
	assert.Equal(t, "東京都台東区2-2", lead.Address) // gap filled
	assert.Equal(t, "gmaps", lead.Source)
}

func TestMergeFeed_LongerStringWins(t *testing.T) {
	lead := &model.MasterLead{
		CompanyName: "店",
		Attributes: map[string]any{
			"business_hours": "11:00-21:00",
			"category":       "イタリアン・フレンチ",
		},
	}
	rec := &model.Record{
		BusinessHours: "11:00-15:00, 17:00-21:00 (L.O. 20:30)",
		Category:      "伊",
	}

	MergeFeed(lead, rec, Options{})

	assert.Equal(t, "11:00-15:00, 17:00-21:00 (L.O. 20:30)", lead.Attributes["business_hours"])
	assert.Equal(t, "イタリアン・フレンチ", lead.Attributes["category"])
}

func TestMergeFeed_NonStringFillsIfEmpty(t *testing.T) {
	lead := &model.MasterLead{CompanyName: "店", Attributes: map[string]any{}}
	rating := 4.1
	rec := &model.Record{Rating: &rating}

	MergeFeed(lead, rec, Options{})
	assert.Equal(t, 4.1, lead.Attributes["rating"])

	// A second feed row with a different rating does not overwrite.
	worse := 2.0
	MergeFeed(lead, &model.Record{Rating: &worse}, Options{})
	assert.Equal(t, 4.1, lead.Attributes["rating"])
}

func TestMergeAttributes_InitializesNilMap(t *testing.T) {
	lead := &model.MasterLead{CompanyName: "店"}
	MergeScrape(lead, &model.Record{Category: "カフェ"}, Options{})
	assert.Equal(t, "カフェ", lead.Attributes["category"])
}
