package database

import (
	"context"

	"github.com/rotisserie/eris"
)

// ListingRefresh carries the fields a re-extraction overwrites. The video
// fields are only applied when HasVideo is set, and features are only
// replaced when there is at least one.
type ListingRefresh struct {
	Name        string
	Description string
	Category    Category
	Avatar      string
	Tags        []string

	HasVideo    bool
	KeyBenefits []string
	WhoIsItFor  []string
	Features    []Feature
}

// UpdateListingFromDraft applies r to the listing in one transaction.
func (db *DB) UpdateListingFromDraft(ctx context.Context, id int64, r ListingRefresh) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.refreshRow(ctx, id, r); err != nil {
			return err
		}
		if !r.HasVideo || len(r.Features) == 0 {
			return nil
		}
		return tx.ReplaceFeatures(ctx, id, r.Features)
	})
}

func (tx *Tx) refreshRow(ctx context.Context, id int64, r ListingRefresh) error {
	tags, err := encodeList(r.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE items SET name = ?, description = ?, category = ?, avatar = ?, tags = ?, updated_at = ?`
	args := []any{r.Name, r.Description, string(r.Category), nullString(r.Avatar), tags, tx.now()}

	if r.HasVideo {
		benefits, err := encodeList(r.KeyBenefits)
		if err != nil {
			return err
		}
		audience, err := encodeList(r.WhoIsItFor)
		if err != nil {
			return err
		}
		query += `, key_benefits = ?, who_is_it_for = ?`
		args = append(args, benefits, audience)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := tx.q.ExecContext(ctx, tx.rebind(query), args...)
	if err != nil {
		return eris.Wrap(err, "database: refresh listing")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "database: refresh listing")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
