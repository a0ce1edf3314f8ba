package extract

import (
	"regexp"
	"strings"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/surface"
)

// titlePatternRe parses the "店舗名 - エリア - サイト名" title convention,
// e.g. "吉野家 帯広白樺店 - 柏林台（牛丼） - 食べログ".
var titlePatternRe = regexp.MustCompile(`^([^-]+?)\s*-\s*[^-]+`)

// maxNameLen guards against a selector accidentally capturing a whole
// panel instead of the store name.
const maxNameLen = 100

// nameSelectors is the ranked fallback selector list, most specific first.
var nameSelectors = []string{
	"h1.display-name",
	"h2.display-name",
	".display-name",
	"h1.rst-name",
	"h2.rst-name",
	".rst-name",
	"h1",
	"h2",
}

func parseTitlePattern(title string) string {
	m := titlePatternRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// NameChain builds the store-name extraction chain: page title pattern,
// then og:title, then the ranked selector list.
func NameChain() Chain {
	return Chain{
		Field: model.FieldName,
		Sanity: func(v string) bool {
			return len(v) > 0 && len(v) <= maxNameLen
		},
		Strategies: []Strategy{
			{Name: "title_pattern", Fn: func(s *surface.Surface) string {
				return parseTitlePattern(s.Title())
			}},
			{Name: "og_title", Fn: func(s *surface.Surface) string {
				return parseTitlePattern(s.Meta("og:title"))
			}},
			{Name: "selectors", Fn: func(s *surface.Surface) string {
				for _, sel := range nameSelectors {
					if text := s.TextOf(sel); text != "" && len(text) <= maxNameLen {
						return text
					}
				}
				return ""
			}},
		},
	}
}
