package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateListingFromDraftWebsiteOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.CreateListing(ctx, sampleInput("scribe-ai"))
	require.NoError(t, err)
	before, err := db.FindListing(ctx, ListingFilter{Slug: "scribe-ai"}, true)
	require.NoError(t, err)

	err = db.UpdateListingFromDraft(ctx, before.ID, ListingRefresh{
		Name:        "Scribe",
		Description: "Writes for you",
		Category:    CategoryProductivity,
		Avatar:      "https://scribe.example.com/icon.png",
		Tags:        []string{"writing"},
	})
	require.NoError(t, err)

	after, err := db.FindListing(ctx, ListingFilter{ID: before.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, "Scribe", after.Name)
	assert.Equal(t, CategoryProductivity, after.Category)
	assert.Equal(t, []string{"writing"}, after.Tags)
	// untouched without video data
	assert.Equal(t, before.KeyBenefits, after.KeyBenefits)
	assert.Equal(t, before.WhoIsItFor, after.WhoIsItFor)
	assert.Equal(t, before.Features, after.Features)
	assert.Equal(t, before.Slug, after.Slug)
}

func TestUpdateListingFromDraftWithVideo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.CreateListing(ctx, sampleInput("scribe-ai"))
	require.NoError(t, err)
	l, err := db.FindListing(ctx, ListingFilter{Slug: "scribe-ai"}, false)
	require.NoError(t, err)

	err = db.UpdateListingFromDraft(ctx, l.ID, ListingRefresh{
		Name:        l.Name,
		Description: l.Description,
		Category:    l.Category,
		HasVideo:    true,
		KeyBenefits: []string{"Faster drafts"},
		WhoIsItFor:  []string{"Marketers"},
		Features:    []Feature{{Name: "Tone", TimestampStart: 4, TimestampEnd: 8}},
	})
	require.NoError(t, err)

	after, err := db.FindListing(ctx, ListingFilter{ID: l.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Faster drafts"}, after.KeyBenefits)
	assert.Equal(t, []string{"Marketers"}, after.WhoIsItFor)
	require.Len(t, after.Features, 1)
	assert.Equal(t, "Tone", after.Features[0].Name)
	assert.Equal(t, []string{}, after.Tags)
}

func TestUpdateListingFromDraftRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := db.CreateListing(ctx, sampleInput("scribe-ai"))
	require.NoError(t, err)
	before, err := db.FindListing(ctx, ListingFilter{Slug: "scribe-ai"}, true)
	require.NoError(t, err)

	err = db.UpdateListingFromDraft(ctx, before.ID, ListingRefresh{
		Name:        "Changed",
		Description: "Changed",
		Category:    CategoryOther,
		HasVideo:    true,
		Features:    []Feature{{Name: "Backwards", TimestampStart: 9, TimestampEnd: 2}},
	})
	require.Error(t, err)

	after, err := db.FindListing(ctx, ListingFilter{ID: before.ID}, true)
	require.NoError(t, err)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Features, after.Features)
}

func TestUpdateListingFromDraftMissing(t *testing.T) {
	db := newTestDB(t)
	err := db.UpdateListingFromDraft(context.Background(), 42, ListingRefresh{Name: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}
