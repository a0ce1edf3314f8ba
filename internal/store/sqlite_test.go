package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLite_CreateAndFind(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	lead := &model.MasterLead{
		CompanyName: "吉野家 渋谷店",
		Phone:       "0311112222",
		Address:     "東京都渋谷区1-1",
		Source:      "tabelog",
		Attributes:  map[string]any{"category": "牛丼", "is_franchise": true},
	}
	require.NoError(t, st.CreateMasterLead(ctx, lead))
	require.NotEmpty(t, lead.ID)

	got, err := st.FindByPhone(ctx, "0311112222")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, lead.ID, got.ID)
	assert.Equal(t, "吉野家 渋谷店", got.CompanyName)
	assert.Equal(t, "牛丼", got.Attributes["category"])
	assert.Equal(t, true, got.Attributes["is_franchise"])

	got, err = st.FindByNameAddress(ctx, "吉野家 渋谷店", "東京都渋谷区1-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = st.GetMasterLead(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	n, err := st.CountMasterLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_FindMisses(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	got, err := st.FindByPhone(ctx, "0399990000")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = st.FindByPhone(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = st.FindByNameAddress(ctx, "存在しない店", "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_DuplicatePhone(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMasterLead(ctx, &model.MasterLead{CompanyName: "店A", Phone: "0311112222"}))
	err := st.CreateMasterLead(ctx, &model.MasterLead{CompanyName: "店B", Phone: "0311112222"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateKey))
}

func TestSQLite_PhonelessLeadsKeyedByNameAddress(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.CreateMasterLead(ctx, &model.MasterLead{CompanyName: "個人の店", Address: "東京都台東区2-2"}))

	// Same name and address without a phone collides.
	err := st.CreateMasterLead(ctx, &model.MasterLead{CompanyName: "個人の店", Address: "東京都台東区2-2"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateKey))

	// A phone-bearing lead with the same name does not.
	require.NoError(t, st.CreateMasterLead(ctx, &model.MasterLead{CompanyName: "個人の店", Address: "東京都台東区2-2", Phone: "0355556666"}))
}

func TestSQLite_UpdateMasterLead(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	lead := &model.MasterLead{CompanyName: "旧店名", Phone: "0311112222"}
	require.NoError(t, st.CreateMasterLead(ctx, lead))

	lead.CompanyName = "新店名"
	lead.Attributes = map[string]any{"website": "https://example.com"}
	require.NoError(t, st.UpdateMasterLead(ctx, lead))

	got, err := st.GetMasterLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "新店名", got.CompanyName)
	assert.Equal(t, "https://example.com", got.Attributes["website"])

	err = st.UpdateMasterLead(ctx, &model.MasterLead{ID: "missing", CompanyName: "x"})
	assert.Error(t, err)
}

func TestSQLite_SourceLinkUpsert(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	lead := &model.MasterLead{CompanyName: "店", Phone: "0311112222"}
	require.NoError(t, st.CreateMasterLead(ctx, lead))

	link := &model.SourceLink{
		SourceURL:    "https://tabelog.com/1/",
		Scope:        "org-1",
		MasterLeadID: lead.ID,
		Record:       &model.Record{SourceURL: "https://tabelog.com/1/", Name: "店", Phone: "0311112222"},
	}
	require.NoError(t, st.UpsertSourceLink(ctx, link))

	// Re-extraction replaces the snapshot, not the row count.
	link2 := &model.SourceLink{
		SourceURL:    "https://tabelog.com/1/",
		Scope:        "org-1",
		MasterLeadID: lead.ID,
		Record:       &model.Record{SourceURL: "https://tabelog.com/1/", Name: "店", Phone: "0311112222", Category: "牛丼"},
	}
	require.NoError(t, st.UpsertSourceLink(ctx, link2))

	got, err := st.GetSourceLink(ctx, "https://tabelog.com/1/", "org-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Record)
	assert.Equal(t, "牛丼", got.Record.Category)

	n, err := st.CountSourceLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// A different scope is a separate link.
	link3 := &model.SourceLink{SourceURL: "https://tabelog.com/1/", Scope: "org-2", MasterLeadID: lead.ID}
	require.NoError(t, st.UpsertSourceLink(ctx, link3))
	n, err = st.CountSourceLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLite_GetSourceLinkMiss(t *testing.T) {
	st := newTestSQLite(t)
	got, err := st.GetSourceLink(context.Background(), "https://nope/", "org-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLite(t)
	require.NoError(t, st.Migrate(context.Background()))
}
