package extract

import (
	"regexp"
	"strings"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/surface"
)

var urlInTextRe = regexp.MustCompile(`https?://\S+`)

func textLenSanity(min, max int) func(string) bool {
	return func(v string) bool { return len(v) >= min && len(v) <= max }
}

// OpenDateChain extracts the store opening date.
func OpenDateChain() Chain {
	return Chain{
		Field:  model.FieldOpenDate,
		Sanity: textLenSanity(2, 100),
		Strategies: []Strategy{
			{Name: "selector", Fn: func(s *surface.Surface) string {
				return s.TextOf(".rstinfo-opened-date")
			}},
			{Name: "table", Fn: func(s *surface.Surface) string {
				return s.TableValue("オープン日")
			}},
		},
	}
}

// HolidayChain extracts the regular holiday text.
func HolidayChain() Chain {
	return Chain{
		Field:  model.FieldHoliday,
		Sanity: textLenSanity(1, 200),
		Strategies: []Strategy{
			{Name: "table", Fn: func(s *surface.Surface) string {
				return s.TableValue("定休日")
			}},
		},
	}
}

// TransportChain extracts transit access directions.
func TransportChain() Chain {
	return Chain{
		Field:  model.FieldTransport,
		Sanity: textLenSanity(2, 500),
		Strategies: []Strategy{
			{Name: "table", Fn: func(s *surface.Surface) string {
				return s.TableValue("交通手段")
			}},
		},
	}
}

// BusinessHoursChain extracts opening hours text.
func BusinessHoursChain() Chain {
	return Chain{
		Field:  model.FieldBusinessHours,
		Sanity: textLenSanity(2, 1000),
		Strategies: []Strategy{
			{Name: "table", Fn: func(s *surface.Surface) string {
				return s.TableValue("営業時間")
			}},
		},
	}
}

// BudgetChain extracts the budget/price band text.
func BudgetChain() Chain {
	return Chain{
		Field:  model.FieldBudget,
		Sanity: textLenSanity(1, 200),
		Strategies: []Strategy{
			{Name: "selector", Fn: func(s *surface.Surface) string {
				return s.TextOf(".rstinfo-table__budget")
			}},
			{Name: "table", Fn: func(s *surface.Surface) string {
				return s.TableValue("予算")
			}},
		},
	}
}

// websiteLabels are the link texts sites use for the official homepage.
var websiteLabels = []string{"公式サイト", "ホームページ", "公式HP", "公式アカウント"}

// WebsiteChain extracts the official website URL: a labeled link, then a
// URL inside the matching table row, then og:url when it points off-site.
func WebsiteChain(siteHost string) Chain {
	return Chain{
		Field:  model.FieldWebsite,
		Sanity: textLenSanity(8, 500),
		Strategies: []Strategy{
			{Name: "labeled_link", Fn: func(s *surface.Surface) string {
				for _, link := range s.Links(websiteLabels...) {
					if link.Href != "" {
						return link.Href
					}
				}
				return ""
			}},
			{Name: "table_url", Fn: func(s *surface.Surface) string {
				for _, label := range websiteLabels {
					if row := s.TableValue(label); row != "" {
						if m := urlInTextRe.FindString(row); m != "" {
							return m
						}
					}
				}
				return ""
			}},
			{Name: "og_url", Fn: func(s *surface.Surface) string {
				ogURL := s.Meta("og:url")
				if ogURL == "" || (siteHost != "" && strings.Contains(ogURL, siteHost)) {
					return ""
				}
				return ogURL
			}},
		},
	}
}

// relatedStoreLabels mark sister-store links.
var relatedStoreLabels = []string{"このお店の系列店", "系列店"}

// RelatedStores collects sister-store hrefs, falling back to the known
// related-store element classes. Returned as a list, not a Chain, because
// the field is multi-valued.
func RelatedStores(s *surface.Surface) []string {
	var stores []string
	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			stores = append(stores, v)
		}
	}

	for _, link := range s.Links(relatedStoreLabels...) {
		add(link.Href)
	}
	if len(stores) > 0 {
		return stores
	}

	for _, sel := range []string{".rstinfo-table__other-store", ".other-store", ".related-stores"} {
		if text := s.TextOf(sel); text != "" {
			add(text)
		}
	}
	return stores
}
