package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneShape(t *testing.T) {
	assert.Equal(t, "03-1234-5678", PhoneShape("お問合せは 03-1234-5678 まで"))
	assert.Equal(t, "0155-22-1234", PhoneShape("0155-22-1234（代表）"))
	assert.Equal(t, "", PhoneShape("電話番号は非公開です"))
}

func TestPhoneChain_DedicatedSelectorFirst(t *testing.T) {
	s := mustSurface(t, `<html><body>
		<span class="rstinfo-table__tel-num">050-5456-7890</span>
		<table><tr><th>電話番号</th><td>03-0000-0000</td></tr></table>
	</body></html>`)

	v, ok := PhoneChain(".rstinfo-table__tel-num").Run(s)
	require.True(t, ok)
	assert.Equal(t, "050-5456-7890", v.Value)
	assert.Equal(t, "selector", v.Strategy)
}

func TestPhoneChain_ReservationRowPrefersShape(t *testing.T) {
	s := mustSurface(t, `<html><body>
		<table><tr><th>予約・お問い合わせ</th><td>予約可 050-5456-7890</td></tr></table>
	</body></html>`)

	v, ok := PhoneChain("").Run(s)
	require.True(t, ok)
	assert.Equal(t, "050-5456-7890", v.Value)
	assert.Equal(t, "table_reservation", v.Strategy)
}

func TestPhoneChain_VerbatimWhenNoShape(t *testing.T) {
	s := mustSurface(t, `<html><body>
		<table><tr><th>電話番号</th><td>店舗に直接確認</td></tr></table>
	</body></html>`)

	v, ok := PhoneChain("").Run(s)
	require.True(t, ok)
	assert.Equal(t, "店舗に直接確認", v.Value)
	assert.Equal(t, "table_phone", v.Strategy)
}

func TestPhoneChain_AbsentWhenNoRows(t *testing.T) {
	s := mustSurface(t, `<html><body><p>no phone here</p></body></html>`)
	_, ok := PhoneChain("").Run(s)
	assert.False(t, ok)
}
