package normalize

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Collapse flattens line breaks and tabs to spaces and squeezes runs of
// whitespace. Used for business hours, holidays, and transport text.
func Collapse(raw string) string {
	s := strings.NewReplacer("\r", "", "\n", " ", "\t", " ").Replace(raw)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// budget tiers keyed by price-rank (dollar-mark count or numeric tier).
var budgetTiers = map[int]string{
	1: "〜￥1,000",
	2: "￥1,000〜￥2,000",
	3: "￥2,000〜￥3,000",
	4: "￥3,000〜",
}

var leadingDollarsRe = regexp.MustCompile(`^\$+`)
var digitRe = regexp.MustCompile(`\d+`)

// BudgetTier maps the delivery-platform price-tier vocabulary (dollar-mark
// counts or numeric ranks) to fixed yen-range strings. Unknown tiers map to
// the empty string; a range is never guessed.
func BudgetTier(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if m := leadingDollarsRe.FindString(s); m != "" {
		n := len(m)
		if n > 4 {
			n = 4
		}
		return budgetTiers[n]
	}
	// A lone $ somewhere in the text still means the cheapest tier.
	if strings.Contains(s, "$") {
		return budgetTiers[1]
	}

	if m := digitRe.FindString(s); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			return ""
		}
		if n >= 4 {
			n = 4
		}
		if tier, ok := budgetTiers[n]; ok {
			return tier
		}
	}
	return ""
}

// Website validates a raw website value as an absolute http(s) URL.
// Anything else normalizes to the empty string.
func Website(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return ""
	}
	return u.String()
}

// SourceURL strips query parameters and fragments so the same listing
// reached through different tracking links keys one SourceLink.
func SourceURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		// Hand-trim when unparseable.
		s := raw
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		return s
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
