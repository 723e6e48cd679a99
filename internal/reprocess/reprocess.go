// Package reprocess re-runs extraction over stored listings and writes the
// refreshed fields back.
package reprocess

import (
	"context"

	"github.com/google/uuid"
	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var ErrNoHref = eris.New("reprocess: listing has no href")

type Store interface {
	FindListings(ctx context.Context, f database.ListingFilter) ([]database.Listing, error)
	UpdateListingFromDraft(ctx context.Context, id int64, r database.ListingRefresh) error
}

type Pipeline interface {
	Run(ctx context.Context, in extraction.Input) (*extraction.Draft, error)
}

type Options struct {
	Type    database.ItemType
	ID      int64
	StartID int64
	DryRun  bool
}

type Summary struct {
	Found   int
	Updated int
	Failed  int
	Skipped int
}

type Job struct {
	store    Store
	pipeline Pipeline
	logger   *zap.Logger
}

func New(store Store, pipeline Pipeline, logger *zap.Logger) *Job {
	return &Job{store: store, pipeline: pipeline, logger: logger}
}

// Run processes matching listings in id order. A failing listing is logged
// and counted; only a store lookup failure or cancellation stops the run.
func (j *Job) Run(ctx context.Context, opts Options) (*Summary, error) {
	log := j.logger.With(zap.String("job_id", uuid.NewString()))
	log.Info("starting reprocessing",
		zap.String("type", string(opts.Type)),
		zap.Int64("id", opts.ID),
		zap.Int64("start_id", opts.StartID),
		zap.Bool("dry_run", opts.DryRun),
	)

	listings, err := j.store.FindListings(ctx, database.ListingFilter{
		Type:    opts.Type,
		ID:      opts.ID,
		StartID: opts.StartID,
		Order:   database.OrderByID,
	})
	if err != nil {
		return nil, eris.Wrap(err, "reprocess: load listings")
	}

	summary := &Summary{Found: len(listings)}
	log.Info("found listings to process", zap.Int("count", len(listings)))

	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		llog := log.With(
			zap.Int64("listing_id", l.ID),
			zap.String("name", l.Name),
			zap.String("href", l.Href),
			zap.String("demo_video", l.DemoVideo),
		)

		if opts.DryRun {
			llog.Info("dry run, skipping extraction")
			summary.Skipped++
			continue
		}

		if err := j.process(ctx, l); err != nil {
			llog.Error("failed to reprocess listing", zap.Error(err))
			summary.Failed++
			continue
		}
		llog.Info("listing updated")
		summary.Updated++
	}

	log.Info("reprocessing complete",
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (j *Job) process(ctx context.Context, l database.Listing) error {
	if l.Href == "" {
		return ErrNoHref
	}

	draft, err := j.pipeline.Run(ctx, extraction.Input{WebsiteURL: l.Href, VideoURL: l.DemoVideo})
	if err != nil {
		return err
	}

	refresh := database.ListingRefresh{
		Name:        orKeep(draft.Name, l.Name),
		Description: orKeep(draft.Description, l.Description),
		Category:    draft.Category,
		Avatar:      draft.Avatar,
		Tags:        draft.Tags,
	}
	if draft.Video.OK() {
		refresh.HasVideo = true
		refresh.KeyBenefits = draft.KeyBenefits
		refresh.WhoIsItFor = draft.WhoIsItFor
		refresh.Features = draft.Features
	}

	return j.store.UpdateListingFromDraft(ctx, l.ID, refresh)
}

func orKeep(fresh, current string) string {
	if fresh == "" {
		return current
	}
	return fresh
}
