package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_PostalAnchor(t *testing.T) {
	// Everything before the postal code is category/branding noise.
	got := Address("和食処たなか 和食/ラーメン〒150-0001東京都渋谷区神宮前1-2-3")
	assert.Equal(t, "〒150-0001東京都渋谷区神宮前1-2-3", got)
}

func TestAddress_PrefectureAnchor(t *testing.T) {
	got := Address("アクセス: 東京都新宿区西新宿2-8-1")
	assert.Equal(t, "東京都新宿区西新宿2-8-1", got)
}

func TestAddress_CityAnchor(t *testing.T) {
	got := Address("店舗情報 港区六本木1-2-3 ヒルズ2F")
	assert.Equal(t, "港区六本木1-2-3 ヒルズ2F", got)
}

func TestAddress_CityAnchorRequiresStreetNumber(t *testing.T) {
	// A ward name inside prose with no street number is not an address.
	assert.Equal(t, "", Address("港区のおすすめレストラン"))
}

func TestAddress_NoAnchor(t *testing.T) {
	assert.Equal(t, "", Address("営業時間 11:00-23:00"))
	assert.Equal(t, "", Address(""))
}

func TestAddress_StripsCountryTokens(t *testing.T) {
	assert.Equal(t, "東京都渋谷区神宮前1-2-3", Address("東京都渋谷区神宮前1-2-3, Japan"))
	assert.Equal(t, "大阪府大阪市北区梅田3-1-1", Address("日本、大阪府大阪市北区梅田3-1-1"))
}

func TestAddress_StripsPlatformBranding(t *testing.T) {
	assert.Equal(t, "東京都渋谷区神宮前1-2-3", Address("東京都渋谷区神宮前1-2-3 Uber Eats"))
}

func TestAddress_StripsDuplicateTrailingPostal(t *testing.T) {
	got := Address("〒150-0001 東京都渋谷区神宮前1-2-3 〒150-0001")
	assert.Equal(t, "〒150-0001 東京都渋谷区神宮前1-2-3", got)
}

func TestAddress_BarePostalSurvives(t *testing.T) {
	// The trailing-postal strip requires leading whitespace so a bare
	// postal code is not destroyed.
	assert.Equal(t, "〒150-0001", Address("〒150-0001"))
}

func TestAddress_StripsHTML(t *testing.T) {
	got := Address("<p>〒150-0001<br>東京都渋谷区神宮前1-2-3</p>")
	assert.Equal(t, "〒150-0001東京都渋谷区神宮前1-2-3", got)
}

func TestAddress_FoldsFullWidth(t *testing.T) {
	got := Address("〒１５０-０００１ 東京都渋谷区神宮前１-２-３")
	assert.Equal(t, "〒150-0001 東京都渋谷区神宮前1-2-3", got)
}

func TestAddress_Idempotent(t *testing.T) {
	inputs := []string{
		"和食処たなか 和食/ラーメン〒150-0001東京都渋谷区神宮前1-2-3",
		"東京都渋谷区神宮前1-2-3, Japan",
		"〒150-0001 東京都渋谷区神宮前1-2-3 〒150-0001",
	}
	for _, in := range inputs {
		once := Address(in)
		assert.Equal(t, once, Address(once), "not idempotent for %q", in)
	}
}

func TestAddress_TooLongIsAbsent(t *testing.T) {
	long := "東京都"
	for len(long) <= maxAddressLen {
		long += "あ"
	}
	assert.Equal(t, "", Address(long))
}

func TestHasAddressAnchor(t *testing.T) {
	assert.True(t, HasAddressAnchor("〒150-0001どこか"))
	assert.True(t, HasAddressAnchor("東京都渋谷区"))
	assert.False(t, HasAddressAnchor("営業時間 11:00"))
}
