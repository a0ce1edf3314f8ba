// Package resolver maps extracted records onto master leads. Matching
// is phone-first with a name-and-address fallback, merges never erase
// non-empty data with empty data, and a lost create race is resolved by
// requerying, so running the same input twice converges to one lead.
package resolver

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/restolead/catalog-cli/internal/model"
	"github.com/restolead/catalog-cli/internal/store"
)

// Options tunes resolution behavior.
type Options struct {
	// Scope partitions source links, e.g. one scope per tenant. Links
	// with the same URL in different scopes stay independent.
	Scope string
	// RefreshNames overwrites an existing lead's name with the incoming
	// record's name on merge.
	RefreshNames bool
}

// Resolver resolves records against the store.
type Resolver struct {
	store store.Store
	opts  Options
	log   *zap.Logger
}

// New creates a Resolver.
func New(st store.Store, opts Options) *Resolver {
	return &Resolver{
		store: st,
		opts:  opts,
		log:   zap.L().Named("resolver"),
	}
}

// Resolve upserts one record. Records with no identity are skipped, not
// errored. The returned ItemResult always carries the outcome; the
// error is non-nil only for store failures.
func (r *Resolver) Resolve(ctx context.Context, rec *model.Record, merge MergePolicy) (*model.ItemResult, error) {
	result := &model.ItemResult{SourceURL: rec.SourceURL}

	if err := rec.Validate(); err != nil {
		if eris.Is(err, model.ErrNoIdentity) {
			r.log.Info("skipping record with no identity", zap.String("url", rec.SourceURL))
			result.Outcome = model.OutcomeSkipped
			return result, nil
		}
		return nil, eris.Wrap(err, "resolver: validate")
	}

	lead, err := r.match(ctx, rec)
	if err != nil {
		return nil, err
	}

	if lead != nil {
		merge(lead, rec, r.opts)
		if err := r.store.UpdateMasterLead(ctx, lead); err != nil {
			return nil, eris.Wrapf(err, "resolver: update lead %s", lead.ID)
		}
		result.Outcome = model.OutcomeMerged
	} else {
		var created bool
		lead, created, err = r.create(ctx, rec, merge)
		if err != nil {
			return nil, err
		}
		if created {
			result.Outcome = model.OutcomeCreated
		} else {
			result.Outcome = model.OutcomeMerged
		}
	}

	result.MasterLeadID = lead.ID

	link := &model.SourceLink{
		SourceURL:    rec.SourceURL,
		Scope:        r.opts.Scope,
		MasterLeadID: lead.ID,
		Record:       rec,
	}
	if err := r.store.UpsertSourceLink(ctx, link); err != nil {
		return nil, eris.Wrapf(err, "resolver: upsert source link %s", rec.SourceURL)
	}

	r.log.Debug("resolved record",
		zap.String("url", rec.SourceURL),
		zap.String("lead", lead.ID),
		zap.String("outcome", string(result.Outcome)))
	return result, nil
}

// match looks up an existing lead, phone first, then name and address.
func (r *Resolver) match(ctx context.Context, rec *model.Record) (*model.MasterLead, error) {
	if rec.Phone != "" {
		lead, err := r.store.FindByPhone(ctx, rec.Phone)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: find by phone")
		}
		if lead != nil {
			return lead, nil
		}
	}
	if rec.Name != "" {
		lead, err := r.store.FindByNameAddress(ctx, rec.Name, rec.Address)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: find by name and address")
		}
		if lead != nil {
			return lead, nil
		}
	}
	return nil, nil
}

// create inserts a fresh lead. A duplicate key error means another
// writer got there first, so requery and merge into the winner instead.
func (r *Resolver) create(ctx context.Context, rec *model.Record, merge MergePolicy) (*model.MasterLead, bool, error) {
	lead := newLead(rec)
	err := r.store.CreateMasterLead(ctx, lead)
	if err == nil {
		return lead, true, nil
	}
	if !eris.Is(err, store.ErrDuplicateKey) {
		return nil, false, eris.Wrap(err, "resolver: create lead")
	}

	r.log.Debug("create lost race, requerying", zap.String("url", rec.SourceURL))
	existing, matchErr := r.match(ctx, rec)
	if matchErr != nil {
		return nil, false, matchErr
	}
	if existing == nil {
		return nil, false, eris.Wrap(err, "resolver: duplicate key but no match on requery")
	}
	merge(existing, rec, r.opts)
	if err := r.store.UpdateMasterLead(ctx, existing); err != nil {
		return nil, false, eris.Wrapf(err, "resolver: update lead %s", existing.ID)
	}
	return existing, false, nil
}

func newLead(rec *model.Record) *model.MasterLead {
	return &model.MasterLead{
		CompanyName: rec.Name,
		Phone:       rec.Phone,
		Address:     rec.Address,
		Source:      rec.Source,
		Attributes:  rec.Attributes(),
	}
}
