package extract

import (
	"regexp"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/surface"
)

// phoneShapeRe matches domestic phone shapes like 0XX-XXXX-XXXX or
// 0XXX-XX-XXXX with optional spacing and parentheses.
var phoneShapeRe = regexp.MustCompile(`0\d{1,4}[-\s(]?\d{1,4}[-\s)]?\s?-?\d{4}`)

// PhoneShape returns the first phone-shaped substring of text, or "" when
// none is present.
func PhoneShape(text string) string {
	return phoneShapeRe.FindString(text)
}

// PhoneChain builds the phone extraction chain: a dedicated selector, then
// the reservation/phone rows of the label table. The phone-shaped substring
// is preferred; when the text carries no phone shape it is kept verbatim as
// a last resort and left to the normalizer.
func PhoneChain(dedicatedSelector string) Chain {
	pick := func(text string) string {
		if text == "" {
			return ""
		}
		if m := PhoneShape(text); m != "" {
			return m
		}
		return text
	}
	var strategies []Strategy
	if dedicatedSelector != "" {
		strategies = append(strategies, Strategy{
			Name: "selector",
			Fn: func(s *surface.Surface) string {
				return pick(s.TextOf(dedicatedSelector))
			},
		})
	}
	strategies = append(strategies,
		Strategy{Name: "table_reservation", Fn: func(s *surface.Surface) string {
			return pick(s.TableValue("予約・"))
		}},
		Strategy{Name: "table_phone", Fn: func(s *surface.Surface) string {
			return pick(s.TableValue("電話番号"))
		}},
	)
	return Chain{
		Field: model.FieldPhone,
		Sanity: func(v string) bool {
			return len(v) >= 4 && len(v) <= 100
		},
		Strategies: strategies,
	}
}
