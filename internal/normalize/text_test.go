package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapse(t *testing.T) {
	assert.Equal(t, "月〜金 11:00-15:00 17:00-23:00", Collapse("月〜金\n11:00-15:00\t17:00-23:00"))
	assert.Equal(t, "a b", Collapse("  a \r\n  b  "))
	assert.Equal(t, "", Collapse("  \n "))
}

func TestBudgetTier_DollarMarks(t *testing.T) {
	assert.Equal(t, "〜￥1,000", BudgetTier("$"))
	assert.Equal(t, "￥1,000〜￥2,000", BudgetTier("$$"))
	assert.Equal(t, "￥2,000〜￥3,000", BudgetTier("$$$"))
	assert.Equal(t, "￥3,000〜", BudgetTier("$$$$"))
	assert.Equal(t, "￥3,000〜", BudgetTier("$$$$$"))
}

func TestBudgetTier_LoneDollarInText(t *testing.T) {
	assert.Equal(t, "〜￥1,000", BudgetTier("Price: $ (cheap)"))
}

func TestBudgetTier_NumericRank(t *testing.T) {
	assert.Equal(t, "〜￥1,000", BudgetTier("1"))
	assert.Equal(t, "￥1,000〜￥2,000", BudgetTier("tier 2"))
	assert.Equal(t, "￥3,000〜", BudgetTier("9"))
}

func TestBudgetTier_Unknown(t *testing.T) {
	assert.Equal(t, "", BudgetTier(""))
	assert.Equal(t, "", BudgetTier("unknown"))
}

func TestWebsite(t *testing.T) {
	assert.Equal(t, "https://tanaka-washoku.jp/", Website("https://tanaka-washoku.jp/"))
	assert.Equal(t, "", Website("tanaka-washoku.jp"))
	assert.Equal(t, "", Website("javascript:void(0)"))
	assert.Equal(t, "", Website("/menu"))
	assert.Equal(t, "", Website(""))
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t,
		"https://www.ubereats.com/jp/store/tanaka/abc123",
		SourceURL("https://www.ubereats.com/jp/store/tanaka/abc123?utm_source=ad&pl=xyz#menu"))
	assert.Equal(t, "https://tabelog.com/tokyo/A1301/", SourceURL("https://tabelog.com/tokyo/A1301/"))
}
