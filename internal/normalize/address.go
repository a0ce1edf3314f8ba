// Package normalize holds the pure field normalizers. Every function takes
// a raw extracted value and returns its canonical form, or the empty string
// when the input carries no usable value. No I/O, no side effects.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// prefectures lists the 47 canonical prefecture names.
var prefectures = []string{
	"北海道",
	"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県", "沖縄県",
}

var (
	htmlTagRe = regexp.MustCompile(`<[^>]*>`)
	spaceRe   = regexp.MustCompile(`\s+`)

	// postalRe anchors on a postal code, optionally prefixed with 〒,
	// keeping everything from the match to the end of the string.
	postalRe = regexp.MustCompile(`〒?\d{3}-?\d{4}.*`)

	// prefRe anchors on any of the 47 prefecture names.
	prefRe = regexp.MustCompile("(" + strings.Join(prefectures, "|") + ").*")

	// cityRe is the last-resort anchor: a city/ward/town suffix followed by
	// text containing a street-number-like token. "港区六本木1-2-3" passes,
	// "港区のマクドナルド" does not.
	cityRe = regexp.MustCompile(`\S{1,6}[市区町村].*\d.*`)

	// trailing/leading boilerplate the upstream sources are known to attach.
	leadingCountryRe  = regexp.MustCompile(`^(日本[、,]?\s*|Japan[,\s]+)`)
	trailingCountryRe = regexp.MustCompile(`(?i)[,、]?\s*(Japan|JP|APACX?)\s*$`)
	trailingPostalRe  = regexp.MustCompile(`\s+〒?\d{3}-?\d{4}\s*$`)
	platformSuffixRe  = regexp.MustCompile(`(?i)\s*(Uber\s?Eats?|出前館|Wolt|menu).*$`)

	maxAddressLen = 200
)

// Address cleans a raw extracted address using the anchor cascade:
// postal code, then prefecture, then city-plus-street-number. Text before
// the first matching anchor (category names, platform branding, duplicated
// labels) is discarded. An address missing all three anchors is treated as
// absent rather than guessed.
func Address(raw string) string {
	clean := htmlTagRe.ReplaceAllString(strings.TrimSpace(raw), "")
	clean = width.Fold.String(clean)

	if m := postalRe.FindString(clean); m != "" {
		if out := stripBoilerplate(m); out != "" {
			return out
		}
	}
	if m := prefRe.FindString(clean); m != "" {
		if out := stripBoilerplate(m); out != "" {
			return out
		}
	}
	if m := cityRe.FindString(clean); m != "" {
		if out := stripBoilerplate(m); out != "" {
			return out
		}
	}
	return ""
}

// stripBoilerplate removes country tokens, residual platform branding, a
// duplicated trailing postal code, and collapses whitespace. Returns ""
// when nothing address-like survives.
func stripBoilerplate(s string) string {
	s = leadingCountryRe.ReplaceAllString(s, "")
	s = trailingCountryRe.ReplaceAllString(s, "")
	s = platformSuffixRe.ReplaceAllString(s, "")
	s = trailingPostalRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAddressLen {
		return ""
	}
	return s
}

// HasAddressAnchor reports whether s contains a postal code or a canonical
// prefecture name. Used as a cheap sanity check by extraction strategies.
func HasAddressAnchor(s string) bool {
	return postalRe.MatchString(s) || prefRe.MatchString(s)
}
