package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/restolead/catalog-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS master_leads (
	id           TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	phone        TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	attributes   TEXT NOT NULL DEFAULT '{}',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS uniq_master_leads_phone
	ON master_leads(phone) WHERE phone <> '';
CREATE UNIQUE INDEX IF NOT EXISTS uniq_master_leads_name_address
	ON master_leads(company_name, address) WHERE phone = '';
CREATE INDEX IF NOT EXISTS idx_master_leads_name ON master_leads(company_name);

CREATE TABLE IF NOT EXISTS source_links (
	id             TEXT PRIMARY KEY,
	source_url     TEXT NOT NULL,
	scope          TEXT NOT NULL DEFAULT '',
	master_lead_id TEXT NOT NULL REFERENCES master_leads(id),
	record         TEXT,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(source_url, scope)
);

CREATE INDEX IF NOT EXISTS idx_source_links_lead ON source_links(master_lead_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindByPhone(ctx context.Context, phone string) (*model.MasterLead, error) {
	if phone == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE phone = ?`,
		phone,
	)
	return scanLead(row, "sqlite: find by phone")
}

func (s *SQLiteStore) FindByNameAddress(ctx context.Context, name, address string) (*model.MasterLead, error) {
	if name == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE company_name = ? AND address = ?`,
		name, address,
	)
	return scanLead(row, "sqlite: find by name and address")
}

func (s *SQLiteStore) GetMasterLead(ctx context.Context, id string) (*model.MasterLead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE id = ?`,
		id,
	)
	return scanLead(row, "sqlite: get master lead")
}

func (s *SQLiteStore) CreateMasterLead(ctx context.Context, lead *model.MasterLead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	attrsJSON, err := json.Marshal(lead.Attributes)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attributes")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO master_leads (id, company_name, phone, address, source, attributes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.CompanyName, lead.Phone, lead.Address, lead.Source, string(attrsJSON), now, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return eris.Wrap(ErrDuplicateKey, "sqlite: insert master lead")
		}
		return eris.Wrap(err, "sqlite: insert master lead")
	}
	return nil
}

func (s *SQLiteStore) UpdateMasterLead(ctx context.Context, lead *model.MasterLead) error {
	lead.UpdatedAt = time.Now().UTC()

	attrsJSON, err := json.Marshal(lead.Attributes)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal attributes")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE master_leads SET company_name = ?, phone = ?, address = ?, source = ?, attributes = ?, updated_at = ?
		 WHERE id = ?`,
		lead.CompanyName, lead.Phone, lead.Address, lead.Source, string(attrsJSON), lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update master lead %s", lead.ID)
	}
	return checkRowsAffected(res, "master_lead", lead.ID)
}

func (s *SQLiteStore) CountMasterLeads(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM master_leads`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count master leads")
}

func (s *SQLiteStore) UpsertSourceLink(ctx context.Context, link *model.SourceLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	var recordJSON any
	if link.Record != nil {
		b, err := json.Marshal(link.Record)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal record")
		}
		recordJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source_links (id, source_url, scope, master_lead_id, record, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source_url, scope) DO UPDATE SET
		   master_lead_id = excluded.master_lead_id,
		   record = excluded.record,
		   updated_at = excluded.updated_at`,
		link.ID, link.SourceURL, link.Scope, link.MasterLeadID, recordJSON, now, now,
	)
	return eris.Wrap(err, "sqlite: upsert source link")
}

func (s *SQLiteStore) GetSourceLink(ctx context.Context, sourceURL, scope string) (*model.SourceLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_url, scope, master_lead_id, record, created_at, updated_at
		 FROM source_links WHERE source_url = ? AND scope = ?`,
		sourceURL, scope,
	)

	var link model.SourceLink
	var recordJSON sql.NullString
	err := row.Scan(&link.ID, &link.SourceURL, &link.Scope, &link.MasterLeadID, &recordJSON, &link.CreatedAt, &link.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get source link")
	}
	if recordJSON.Valid {
		link.Record = &model.Record{}
		if err := json.Unmarshal([]byte(recordJSON.String), link.Record); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal record")
		}
	}
	return &link, nil
}

func (s *SQLiteStore) CountSourceLinks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM source_links`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count source links")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable, op string) (*model.MasterLead, error) {
	var lead model.MasterLead
	var attrsJSON string

	err := row.Scan(&lead.ID, &lead.CompanyName, &lead.Phone, &lead.Address, &lead.Source,
		&attrsJSON, &lead.CreatedAt, &lead.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, op)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &lead.Attributes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal attributes")
	}
	return &lead, nil
}
