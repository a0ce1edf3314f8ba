package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restolead/catalog-cli/internal/resolver"
	"github.com/restolead/catalog-cli/internal/store"
)

func newWebhookEnv(t *testing.T, secret string) (http.HandlerFunc, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	res := resolver.New(st, resolver.Options{})
	// Window of one keeps resolution order deterministic for count asserts.
	return feedWebhookHandler(res, secret, 1, 0), st
}

func postFeed(handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestFeedWebhook_ResolvesAndReportsCounts(t *testing.T) {
	handler, st := newWebhookEnv(t, "")

	body := `[
		{"store_name": "吉野家 帯広白樺店", "phone": "03-1234-5678"},
		{"store_name": "吉野家 帯広白樺店", "phone": "0312345678", "full_address": "北海道帯広市白樺16条西2-1-1"},
		{"note": "no identity here"}
	]`
	w := postFeed(handler, "/webhook/feed", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp["rows"])
	assert.Equal(t, 1, resp["created"])
	assert.Equal(t, 1, resp["merged"])
	assert.Equal(t, 1, resp["skipped"])
	assert.Equal(t, 0, resp["errored"])

	// Both phone rows converge on one lead; the merge filled the address.
	count, err := st.CountMasterLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	lead, err := st.FindByPhone(context.Background(), "0312345678")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "吉野家 帯広白樺店", lead.CompanyName)
	assert.Equal(t, "北海道帯広市白樺16条西2-1-1", lead.Address)
}

func TestFeedWebhook_SecretCheck(t *testing.T) {
	handler, _ := newWebhookEnv(t, "hush")

	w := postFeed(handler, "/webhook/feed", `[{"store_name":"店"}]`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postFeed(handler, "/webhook/feed?secret=wrong", `[{"store_name":"店"}]`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postFeed(handler, "/webhook/feed?secret=hush", `[{"store_name":"店"}]`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFeedWebhook_RejectsBadBodies(t *testing.T) {
	handler, _ := newWebhookEnv(t, "")

	w := postFeed(handler, "/webhook/feed", `{"not":"an array"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFeed(handler, "/webhook/feed", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
