package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/restolead/catalog-cli/internal/db"
	"github.com/restolead/catalog-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests inject pgxmock here.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS master_leads (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_name TEXT NOT NULL,
	phone        TEXT NOT NULL DEFAULT '',
	address      TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL DEFAULT '',
	attributes   JSONB NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS uniq_master_leads_phone
	ON master_leads(phone) WHERE phone <> '';
CREATE UNIQUE INDEX IF NOT EXISTS uniq_master_leads_name_address
	ON master_leads(company_name, address) WHERE phone = '';
CREATE INDEX IF NOT EXISTS idx_master_leads_name ON master_leads(company_name);

CREATE TABLE IF NOT EXISTS source_links (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source_url     TEXT NOT NULL,
	scope          TEXT NOT NULL DEFAULT '',
	master_lead_id TEXT NOT NULL REFERENCES master_leads(id),
	record         JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(source_url, scope)
);

CREATE INDEX IF NOT EXISTS idx_source_links_lead ON source_links(master_lead_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*model.MasterLead, error) {
	if phone == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE phone = $1`,
		phone,
	)
	return scanLeadPg(row, "postgres: find by phone")
}

func (s *PostgresStore) FindByNameAddress(ctx context.Context, name, address string) (*model.MasterLead, error) {
	if name == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE company_name = $1 AND address = $2`,
		name, address,
	)
	return scanLeadPg(row, "postgres: find by name and address")
}

func (s *PostgresStore) GetMasterLead(ctx context.Context, id string) (*model.MasterLead, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_name, phone, address, source, attributes, created_at, updated_at
		 FROM master_leads WHERE id = $1`,
		id,
	)
	return scanLeadPg(row, "postgres: get master lead")
}

func (s *PostgresStore) CreateMasterLead(ctx context.Context, lead *model.MasterLead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	attrsJSON, err := json.Marshal(lead.Attributes)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal attributes")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO master_leads (id, company_name, phone, address, source, attributes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		lead.ID, lead.CompanyName, lead.Phone, lead.Address, lead.Source, attrsJSON, now, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return eris.Wrap(ErrDuplicateKey, "postgres: insert master lead")
		}
		return eris.Wrap(err, "postgres: insert master lead")
	}
	return nil
}

func (s *PostgresStore) UpdateMasterLead(ctx context.Context, lead *model.MasterLead) error {
	lead.UpdatedAt = time.Now().UTC()

	attrsJSON, err := json.Marshal(lead.Attributes)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal attributes")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE master_leads SET company_name = $1, phone = $2, address = $3, source = $4, attributes = $5, updated_at = $6
		 WHERE id = $7`,
		lead.CompanyName, lead.Phone, lead.Address, lead.Source, attrsJSON, lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update master lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("master_lead not found: %s", lead.ID)
	}
	return nil
}

func (s *PostgresStore) CountMasterLeads(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM master_leads`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count master leads")
}

func (s *PostgresStore) UpsertSourceLink(ctx context.Context, link *model.SourceLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	var recordJSON []byte
	if link.Record != nil {
		b, err := json.Marshal(link.Record)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal record")
		}
		recordJSON = b
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO source_links (id, source_url, scope, master_lead_id, record, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (source_url, scope) DO UPDATE SET
		   master_lead_id = $4, record = $5, updated_at = $7`,
		link.ID, link.SourceURL, link.Scope, link.MasterLeadID, recordJSON, now, now,
	)
	return eris.Wrap(err, "postgres: upsert source link")
}

func (s *PostgresStore) GetSourceLink(ctx context.Context, sourceURL, scope string) (*model.SourceLink, error) {
	var link model.SourceLink
	var recordJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, source_url, scope, master_lead_id, record, created_at, updated_at
		 FROM source_links WHERE source_url = $1 AND scope = $2`,
		sourceURL, scope,
	).Scan(&link.ID, &link.SourceURL, &link.Scope, &link.MasterLeadID, &recordJSON, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get source link")
	}
	if recordJSON != nil {
		link.Record = &model.Record{}
		if err := json.Unmarshal(recordJSON, link.Record); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal record")
		}
	}
	return &link, nil
}

func (s *PostgresStore) CountSourceLinks(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM source_links`).Scan(&count)
	return count, eris.Wrap(err, "postgres: count source links")
}

func scanLeadPg(row pgx.Row, op string) (*model.MasterLead, error) {
	var lead model.MasterLead
	var attrsJSON []byte

	err := row.Scan(&lead.ID, &lead.CompanyName, &lead.Phone, &lead.Address, &lead.Source,
		&attrsJSON, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, op)
	}
	if err := json.Unmarshal(attrsJSON, &lead.Attributes); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal attributes")
	}
	return &lead, nil
}
