// Package surface wraps a fetched page into the navigable representation
// the field extractors operate on: selector text lookup, label→value table
// rows, meta tags, embedded structured data, and bootstrap script state.
package surface

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Surface is one already-fetched page. All lookups are read-only and never
// trigger navigation.
type Surface struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse builds a Surface from raw HTML. baseURL resolves relative links.
func Parse(html, baseURL string) (*Surface, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "surface: parse html")
	}
	var base *url.URL
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil {
			base = u
		}
	}
	return &Surface{doc: doc, base: base}, nil
}

var wsRe = regexp.MustCompile(`\s+`)

func collapse(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Title returns the page <title> text.
func (s *Surface) Title() string {
	return collapse(s.doc.Find("title").First().Text())
}

// TextOf returns the collapsed text of the first element matching the
// selector, or "" when nothing matches.
func (s *Surface) TextOf(selector string) string {
	sel := s.doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return collapse(sel.Text())
}

// AttrOf returns an attribute of the first element matching the selector.
func (s *Surface) AttrOf(selector, attr string) string {
	v, _ := s.doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// Meta returns the content of a meta tag matched by name or property.
func (s *Surface) Meta(key string) string {
	for _, sel := range []string{
		`meta[name="` + key + `"]`,
		`meta[property="` + key + `"]`,
	} {
		if v, ok := s.doc.Find(sel).First().Attr("content"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// TableValue scans label→value tables (th/td and dt/dd) for a header cell
// containing label and returns the collapsed text of its value cell.
func (s *Surface) TableValue(label string) string {
	var out string
	s.doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		th := row.Find("th").First()
		if th.Length() == 0 || !strings.Contains(collapse(th.Text()), label) {
			return true
		}
		if td := row.Find("td").First(); td.Length() > 0 {
			out = collapse(td.Text())
			return false
		}
		return true
	})
	if out != "" {
		return out
	}
	s.doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !strings.Contains(collapse(dt.Text()), label) {
			return true
		}
		if dd := dt.NextFiltered("dd"); dd.Length() > 0 {
			out = collapse(dd.Text())
			return false
		}
		return true
	})
	return out
}

// StructuredData returns every JSON-LD block on the page. Blocks that fail
// to parse are skipped.
func (s *Surface) StructuredData() []json.RawMessage {
	var blocks []json.RawMessage
	s.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" || !json.Valid([]byte(raw)) {
			return
		}
		blocks = append(blocks, json.RawMessage(raw))
	})
	return blocks
}

// ScriptState extracts embedded client-side state objects: a script tag
// whose id matches a known bootstrap name, or an inline assignment
// `window.NAME = {...}`. Only syntactically valid JSON objects are returned.
func (s *Surface) ScriptState(names ...string) []json.RawMessage {
	var blocks []json.RawMessage

	for _, name := range names {
		sel := s.doc.Find(`script#` + name).First()
		if sel.Length() == 0 {
			continue
		}
		raw := strings.TrimSpace(sel.Text())
		if json.Valid([]byte(raw)) {
			blocks = append(blocks, json.RawMessage(raw))
		}
	}

	s.doc.Find("script:not([src])").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		for _, name := range names {
			idx := strings.Index(text, name)
			if idx < 0 {
				continue
			}
			rest := text[idx+len(name):]
			eq := strings.Index(rest, "=")
			if eq < 0 || eq > 8 {
				continue
			}
			if obj := extractJSONObject(rest[eq+1:]); obj != "" {
				blocks = append(blocks, json.RawMessage(obj))
			}
		}
	})

	return blocks
}

// extractJSONObject returns the first balanced {...} object in s, honoring
// string literals and escapes, or "" when none parses.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate
				}
				return ""
			}
		}
	}
	return ""
}

// Link is an anchor with its resolved href.
type Link struct {
	Text string
	Href string
}

// Links returns all anchors whose text contains any of the given substrings,
// with hrefs resolved against the page URL.
func (s *Surface) Links(textContains ...string) []Link {
	var links []Link
	s.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		for _, want := range textContains {
			if strings.Contains(text, want) {
				href, _ := sel.Attr("href")
				links = append(links, Link{Text: text, Href: s.resolve(href)})
				return
			}
		}
	})
	return links
}

func (s *Surface) resolve(href string) string {
	if s.base == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return s.base.ResolveReference(u).String()
}

// FullText returns the collapsed text of the whole body. Last-resort input
// for full-page regex scans.
func (s *Surface) FullText() string {
	return collapse(s.doc.Find("body").Text())
}

// Find exposes the underlying selection for DOM-walking heuristics that
// need more than the convenience accessors.
func (s *Surface) Find(selector string) *goquery.Selection {
	return s.doc.Find(selector)
}
