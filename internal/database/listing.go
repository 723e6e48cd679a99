package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

type Order int

const (
	// OrderNewest lists new items first, then most recently created.
	OrderNewest Order = iota
	// OrderByID lists in ascending id order, for batch jobs.
	OrderByID
)

// ListingFilter narrows FindListings/FindListing. Zero values mean "any".
// A non-nil empty Slugs matches nothing.
type ListingFilter struct {
	ID      int64
	Slug    string
	Slugs   []string
	Type    ItemType
	StartID int64
	Order   Order
}

const listingColumns = `id, slug, name, description, category, href, avatar, type, pricing_model,
	tags, key_benefits, who_is_it_for, is_new, demo_video, created_at, updated_at`

func (f ListingFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.ID != 0 {
		conds = append(conds, "id = ?")
		args = append(args, f.ID)
	}
	if f.Slug != "" {
		conds = append(conds, "slug = ?")
		args = append(args, f.Slug)
	}
	if len(f.Slugs) > 0 {
		conds = append(conds, "slug IN (?"+strings.Repeat(",?", len(f.Slugs)-1)+")")
		for _, s := range f.Slugs {
			args = append(args, s)
		}
	}
	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.StartID != 0 {
		conds = append(conds, "id >= ?")
		args = append(args, f.StartID)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (f ListingFilter) orderBy() string {
	if f.Order == OrderByID {
		return " ORDER BY id ASC"
	}
	return " ORDER BY is_new DESC, created_at DESC, id DESC"
}

// FindListings returns every listing matching f, without features.
func (s store) FindListings(ctx context.Context, f ListingFilter) ([]Listing, error) {
	if f.Slugs != nil && len(f.Slugs) == 0 {
		return []Listing{}, nil
	}

	where, args := f.where()
	rows, err := s.q.QueryContext(ctx, s.rebind(`SELECT `+listingColumns+` FROM items`+where+f.orderBy()), args...)
	if err != nil {
		return nil, eris.Wrap(err, "database: find listings")
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "database: iterate listings")
	}
	return listings, nil
}

// FindListing returns the first listing matching f, optionally with its
// features. ErrNotFound when nothing matches.
func (s store) FindListing(ctx context.Context, f ListingFilter, withFeatures bool) (*Listing, error) {
	where, args := f.where()
	row := s.q.QueryRowContext(ctx, s.rebind(`SELECT `+listingColumns+` FROM items`+where+f.orderBy()+` LIMIT 1`), args...)

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if withFeatures {
		features, err := s.FindFeatures(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		l.Features = features
	}
	return l, nil
}

func (s store) FindFeatures(ctx context.Context, listingID int64) ([]Feature, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT id, item_id, feature, description, timestamp_start, timestamp_end
		FROM features
		WHERE item_id = ?
		ORDER BY timestamp_start ASC, id ASC`), listingID)
	if err != nil {
		return nil, eris.Wrap(err, "database: find features")
	}
	defer rows.Close()

	features := []Feature{}
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.ListingID, &f.Name, &f.Description, &f.TimestampStart, &f.TimestampEnd); err != nil {
			return nil, eris.Wrap(err, "database: scan feature")
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// CreateListing inserts the listing and its features atomically and returns
// the stored slug.
func (db *DB) CreateListing(ctx context.Context, in ListingInput) (string, error) {
	err := db.WithTx(ctx, func(tx *Tx) error {
		id, err := tx.InsertListing(ctx, in)
		if err != nil {
			return err
		}
		return tx.InsertFeatures(ctx, id, in.Features)
	})
	if err != nil {
		return "", err
	}
	return in.Slug, nil
}

// UpdateListing replaces the listing row and its whole feature set in one
// transaction. If any feature fails to insert, the row update is rolled back
// too.
func (db *DB) UpdateListing(ctx context.Context, id int64, in ListingInput) (string, error) {
	err := db.WithTx(ctx, func(tx *Tx) error {
		if err := tx.UpdateListingRow(ctx, id, in); err != nil {
			return err
		}
		return tx.ReplaceFeatures(ctx, id, in.Features)
	})
	if err != nil {
		return "", err
	}
	return in.Slug, nil
}

func (tx *Tx) InsertListing(ctx context.Context, in ListingInput) (int64, error) {
	tags, benefits, audience, err := encodeLists(in)
	if err != nil {
		return 0, err
	}
	now := tx.now()

	var id int64
	err = tx.q.QueryRowContext(ctx, tx.rebind(`
		INSERT INTO items (slug, name, description, category, href, avatar, type, pricing_model,
			tags, key_benefits, who_is_it_for, is_new, demo_video, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		in.Slug, in.Name, in.Description, string(in.Category), in.Href, nullString(in.Avatar),
		string(in.Type), string(in.PricingModel), tags, benefits, audience, in.IsNew,
		nullString(in.DemoVideo), now, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, eris.Wrapf(ErrDuplicateSlug, "database: insert %q", in.Slug)
		}
		return 0, eris.Wrap(err, "database: insert listing")
	}
	return id, nil
}

func (tx *Tx) UpdateListingRow(ctx context.Context, id int64, in ListingInput) error {
	tags, benefits, audience, err := encodeLists(in)
	if err != nil {
		return err
	}

	res, err := tx.q.ExecContext(ctx, tx.rebind(`
		UPDATE items SET slug = ?, name = ?, description = ?, category = ?, href = ?, avatar = ?,
			type = ?, pricing_model = ?, tags = ?, key_benefits = ?, who_is_it_for = ?, is_new = ?,
			demo_video = ?, updated_at = ?
		WHERE id = ?`),
		in.Slug, in.Name, in.Description, string(in.Category), in.Href, nullString(in.Avatar),
		string(in.Type), string(in.PricingModel), tags, benefits, audience, in.IsNew,
		nullString(in.DemoVideo), tx.now(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicateSlug, "database: update %q", in.Slug)
		}
		return eris.Wrap(err, "database: update listing")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "database: update listing")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceFeatures deletes every feature of the listing, then inserts
// features. It is not a diff.
func (tx *Tx) ReplaceFeatures(ctx context.Context, listingID int64, features []Feature) error {
	if _, err := tx.q.ExecContext(ctx, tx.rebind(`DELETE FROM features WHERE item_id = ?`), listingID); err != nil {
		return eris.Wrap(err, "database: delete features")
	}
	return tx.InsertFeatures(ctx, listingID, features)
}

func (tx *Tx) InsertFeatures(ctx context.Context, listingID int64, features []Feature) error {
	for _, f := range features {
		_, err := tx.q.ExecContext(ctx, tx.rebind(`
			INSERT INTO features (item_id, feature, description, timestamp_start, timestamp_end)
			VALUES (?, ?, ?, ?, ?)`),
			listingID, f.Name, f.Description, f.TimestampStart, f.TimestampEnd,
		)
		if err != nil {
			return eris.Wrapf(err, "database: insert feature %q", f.Name)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		l                        Listing
		category, typ, pricing   string
		avatar, demoVideo        sql.NullString
		tags, benefits, audience string
		createdAt, updatedAt     time.Time
	)
	err := row.Scan(
		&l.ID, &l.Slug, &l.Name, &l.Description, &category, &l.Href, &avatar, &typ, &pricing,
		&tags, &benefits, &audience, &l.IsNew, &demoVideo, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "database: scan listing")
	}

	l.Category = Category(category)
	l.Type = ItemType(typ)
	l.PricingModel = PricingModel(pricing)
	l.Avatar = avatar.String
	l.DemoVideo = demoVideo.String
	l.CreatedAt = createdAt
	l.UpdatedAt = updatedAt

	if err := decodeList(tags, &l.Tags); err != nil {
		return nil, err
	}
	if err := decodeList(benefits, &l.KeyBenefits); err != nil {
		return nil, err
	}
	if err := decodeList(audience, &l.WhoIsItFor); err != nil {
		return nil, err
	}
	return &l, nil
}

func encodeLists(in ListingInput) (tags, benefits, audience string, err error) {
	if tags, err = encodeList(in.Tags); err != nil {
		return
	}
	if benefits, err = encodeList(in.KeyBenefits); err != nil {
		return
	}
	audience, err = encodeList(in.WhoIsItFor)
	return
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", eris.Wrap(err, "database: encode list")
	}
	return string(raw), nil
}

func decodeList(raw string, dst *[]string) error {
	*dst = []string{}
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return eris.Wrap(err, "database: decode list")
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
