package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/letieu/agent-directory/internal/database"
	"github.com/letieu/agent-directory/internal/extraction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gate struct {
	on  bool
	err error
}

func (g gate) EditEnabled(context.Context) (bool, error) { return g.on, g.err }

type fakeAutofiller struct {
	draft *extraction.Draft
	err   error
	calls int
}

func (f *fakeAutofiller) Run(_ context.Context, in extraction.Input) (*extraction.Draft, error) {
	f.calls++
	if in.WebsiteURL == "" {
		return nil, extraction.ErrWebsiteURLRequired
	}
	return f.draft, f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema(context.Background()))
	return db
}

func input(slug, name string) database.ListingInput {
	return database.ListingInput{
		Slug:         slug,
		Name:         name,
		Description:  "Drafts articles from an outline",
		Category:     database.CategoryWriting,
		Href:         "https://scribe.ai",
		Type:         database.TypeTool,
		PricingModel: database.PricingFree,
		Tags:         []string{"writing"},
		Features: []database.Feature{
			{Name: "Outline to draft", TimestampStart: 1, TimestampEnd: 6},
		},
	}
}

func TestGateFailsClosed(t *testing.T) {
	db := newTestDB(t)
	af := &fakeAutofiller{}
	for name, g := range map[string]gate{
		"off":          {on: false},
		"lookup error": {on: true, err: errors.New("flag service down")},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(db, g, af, zap.NewNop())

			_, err := svc.Create(context.Background(), input("scribe-ai", "Scribe AI"))
			var forbidden *ForbiddenError
			require.True(t, errors.As(err, &forbidden))
			assert.Equal(t, 403, forbidden.StatusCode())
			assert.Equal(t, "create", forbidden.Op)

			_, err = svc.Update(context.Background(), 1, input("scribe-ai", "Scribe AI"))
			assert.True(t, errors.As(err, &forbidden))

			_, err = svc.Autofill(context.Background(), extraction.Input{WebsiteURL: "https://scribe.ai"})
			assert.True(t, errors.As(err, &forbidden))
		})
	}
	assert.Zero(t, af.calls)

	all, err := db.FindListings(context.Background(), database.ListingFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGateRunsBeforeValidation(t *testing.T) {
	svc := NewService(newTestDB(t), gate{on: false}, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), database.ListingInput{})
	var forbidden *ForbiddenError
	assert.True(t, errors.As(err, &forbidden))
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newTestDB(t), gate{on: true}, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), input("scribe-ai", "Scribe AI"))
	require.NoError(t, err)
	assert.Equal(t, "scribe-ai", created)

	got, err := svc.Get(context.Background(), "scribe-ai")
	require.NoError(t, err)
	assert.Equal(t, "Scribe AI", got.Name)
	require.Len(t, got.Features, 1)

	byID, err := svc.GetByID(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Slug, byID.Slug)

	tools, err := svc.List(context.Background(), database.TypeTool)
	require.NoError(t, err)
	assert.Len(t, tools, 1)
	agents, err := svc.List(context.Background(), database.TypeAgent)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestCreateDerivesUniqueSlug(t *testing.T) {
	svc := NewService(newTestDB(t), gate{on: true}, nil, zap.NewNop())

	first, err := svc.Create(context.Background(), input("", "Scribe AI"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), input("", "Scribe AI"))
	require.NoError(t, err)

	assert.Equal(t, "scribe-ai", first)
	assert.Equal(t, "scribe-ai-2", second)
}

func TestCreateExplicitDuplicateSlug(t *testing.T) {
	svc := NewService(newTestDB(t), gate{on: true}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), input("scribe-ai", "Scribe AI"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), input("scribe-ai", "Other"))
	assert.True(t, errors.Is(err, database.ErrDuplicateSlug))
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newTestDB(t), gate{on: true}, nil, zap.NewNop())

	in := input("scribe-ai", "Scribe AI")
	in.Features[0].TimestampStart = 9
	_, err := svc.Create(context.Background(), in)
	assert.True(t, errors.Is(err, database.ErrInvalidListing))

	in = input("Not A Slug", "Scribe AI")
	_, err = svc.Create(context.Background(), in)
	assert.True(t, errors.Is(err, database.ErrInvalidListing))
}

func TestUpdateReplacesFeatures(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, gate{on: true}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), input("scribe-ai", "Scribe AI"))
	require.NoError(t, err)
	got, err := svc.Get(context.Background(), "scribe-ai")
	require.NoError(t, err)

	in := got.Input()
	in.Name = "Scribe"
	in.Features = []database.Feature{
		{Name: "Tone control", TimestampStart: 10, TimestampEnd: 20},
		{Name: "Export", TimestampStart: 20, TimestampEnd: 20},
	}
	_, err = svc.Update(context.Background(), got.ID, in)
	require.NoError(t, err)

	got, err = svc.Get(context.Background(), "scribe-ai")
	require.NoError(t, err)
	assert.Equal(t, "Scribe", got.Name)
	require.Len(t, got.Features, 2)
	assert.Equal(t, "Tone control", got.Features[0].Name)
}

func TestAutofill(t *testing.T) {
	draft := &extraction.Draft{RunID: "run-1"}
	af := &fakeAutofiller{draft: draft}
	svc := NewService(newTestDB(t), gate{on: true}, af, zap.NewNop())

	got, err := svc.Autofill(context.Background(), extraction.Input{WebsiteURL: "https://scribe.ai"})
	require.NoError(t, err)
	assert.Same(t, draft, got)

	_, err = svc.Autofill(context.Background(), extraction.Input{})
	assert.True(t, errors.Is(err, extraction.ErrWebsiteURLRequired))
}

func TestAutofillFailureIsGeneric(t *testing.T) {
	af := &fakeAutofiller{err: extraction.ErrWebsiteExtraction}
	svc := NewService(newTestDB(t), gate{on: true}, af, zap.NewNop())

	_, err := svc.Autofill(context.Background(), extraction.Input{WebsiteURL: "https://scribe.ai"})
	assert.True(t, errors.Is(err, ErrAutofillFailed))
}
