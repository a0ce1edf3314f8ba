package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/restolead/catalog-cli/internal/model"
)

// ErrDuplicateKey is returned by CreateMasterLead when a unique
// constraint fires. The resolver treats it as a lost race and requeries.
var ErrDuplicateKey = eris.New("store: duplicate key")

// Store defines the persistence interface for the catalog pipeline.
// Lookup methods return (nil, nil) when no row matches.
type Store interface {
	// Master leads
	FindByPhone(ctx context.Context, phone string) (*model.MasterLead, error)
	FindByNameAddress(ctx context.Context, name, address string) (*model.MasterLead, error)
	GetMasterLead(ctx context.Context, id string) (*model.MasterLead, error)
	CreateMasterLead(ctx context.Context, lead *model.MasterLead) error
	UpdateMasterLead(ctx context.Context, lead *model.MasterLead) error
	CountMasterLeads(ctx context.Context) (int, error)

	// Source links
	UpsertSourceLink(ctx context.Context, link *model.SourceLink) error
	GetSourceLink(ctx context.Context, sourceURL, scope string) (*model.SourceLink, error)
	CountSourceLinks(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
