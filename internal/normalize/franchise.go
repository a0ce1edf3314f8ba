package normalize

import "regexp"

// FranchiseClassifier decides whether a store is a chain location from its
// name and any related-stores signal. The rules are locale-specific, so the
// resolver and adapters only see this interface.
type FranchiseClassifier interface {
	IsFranchise(name string, relatedStores []string) bool
}

var (
	franchiseKeywordRe = regexp.MustCompile(`支店|号店|チェーン`)
	headOfficeRe       = regexp.MustCompile(`本店`)
	branchSuffixRe     = regexp.MustCompile(`[\s　]+[^\s　]*店$`)
	storeSuffixRe      = regexp.MustCompile(`店$`)
	headOfficeOnlyRe   = regexp.MustCompile(`^[^店]*本店$`)
)

// JapaneseRules classifies by Japanese signage conventions: chain
// locations are named "<brand> <area>店" while the flagship is "<brand>
// 本店". First matching rule wins.
type JapaneseRules struct{}

// IsFranchise applies the rule cascade.
func (JapaneseRules) IsFranchise(name string, relatedStores []string) bool {
	// A related-stores/brand signal is the strongest indicator.
	if len(relatedStores) > 0 {
		return true
	}
	if name == "" {
		return false
	}

	// Explicit chain/branch/numbered-store wording, unless the name also
	// carries head-office wording.
	if franchiseKeywordRe.MatchString(name) && !headOfficeRe.MatchString(name) {
		return true
	}

	// "<brand> <area>店" branch shape. "本店" at the end means flagship.
	if branchSuffixRe.MatchString(name) && !headOfficeOnlyRe.MatchString(name) {
		return true
	}

	// Generic 店 suffix, excluding names that are solely head-office wording.
	if storeSuffixRe.MatchString(name) && !headOfficeOnlyRe.MatchString(name) {
		return true
	}

	return false
}
