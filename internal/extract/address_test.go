package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressChain_JSONLDTypedPreferred(t *testing.T) {
	s := mustSurface(t, `<html><head>
		<script type="application/ld+json">
		{"@type":"WebPage","address":"どこか別の場所 1-1"}
		</script>
		<script type="application/ld+json">
		{"@type":"Restaurant","address":{"streetAddress":"白樺16条西2-1-1","addressLocality":"帯広市","addressRegion":"北海道","postalCode":"080-0027"}}
		</script>
	</head><body></body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "白樺16条西2-1-1 帯広市 北海道 080-0027", v.Value)
	assert.Equal(t, "jsonld", v.Strategy)
}

func TestAddressChain_JSONLDGraph(t *testing.T) {
	s := mustSurface(t, `<html><head>
		<script type="application/ld+json">
		{"@graph":[{"@type":"BreadcrumbList"},{"@type":"FoodEstablishment","address":{"formattedAddress":"東京都新宿区西新宿1-1-1"}}]}
		</script>
	</head><body></body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "東京都新宿区西新宿1-1-1", v.Value)
}

func TestAddressChain_MetaDescriptionSnip(t *testing.T) {
	s := mustSurface(t, `<html><head>
		<meta property="og:description" content="帯広の牛丼店。〒080-0027 北海道帯広市白樺16条西2-1-1 へどうぞ。">
	</head><body></body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "meta", v.Strategy)
	assert.Contains(t, v.Value, "080-0027")
}

func TestAddressChain_ScriptState(t *testing.T) {
	s := mustSurface(t, `<html><head>
		<script>window.__NEXT_DATA__ = {"props":{"pageProps":{"store":{"title":"店","location":{"address":"東京都渋谷区道玄坂2-3-4"}}}}};</script>
	</head><body></body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "東京都渋谷区道玄坂2-3-4", v.Value)
	assert.Equal(t, "script_state", v.Strategy)
}

func TestAddressChain_DOMKeyword(t *testing.T) {
	s := mustSurface(t, `<html><body>
		<div><span>住所</span>〒080-0027 北海道帯広市白樺16条西2-1-1</div>
	</body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "dom_heuristics", v.Strategy)
	assert.Contains(t, v.Value, "帯広市")
}

func TestAddressChain_TableFallsBackToAccess(t *testing.T) {
	s := mustSurface(t, `<html><body>
		<table><tr><th>アクセス</th><td>帯広駅から徒歩15分</td></tr></table>
	</body></html>`)

	v, ok := AddressChain().Run(s)
	require.True(t, ok)
	assert.Equal(t, "table", v.Strategy)
	assert.Equal(t, "帯広駅から徒歩15分", v.Value)
}

func TestRenderAddress(t *testing.T) {
	assert.Equal(t, "1-1-1 新宿区 東京都", renderAddress(map[string]any{
		"streetAddress":   "1-1-1",
		"addressLocality": "新宿区",
		"addressRegion":   "東京都",
	}))
	assert.Equal(t, "東京都新宿区", renderAddress("  東京都新宿区 "))
	assert.Equal(t, "", renderAddress(42))
}

func TestIsBusinessType(t *testing.T) {
	assert.True(t, isBusinessType("Restaurant"))
	assert.True(t, isBusinessType([]any{"Thing", "LocalBusiness"}))
	assert.False(t, isBusinessType("WebPage"))
	assert.False(t, isBusinessType(nil))
}
