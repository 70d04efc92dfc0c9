package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/FanzeeApp/sotvolbackend/internal/model"
)

// listingStatusExpr derives the listing status from its bookings at query
// time. It is the SQL counterpart of service.ResolveListingStatus and must
// keep the same precedence: sold over reserved over available.
const listingStatusExpr = `CASE
    WHEN EXISTS (SELECT 1 FROM bookings b WHERE b.listing_code = l.code AND b.status = 'sold') THEN 'sold'
    WHEN EXISTS (SELECT 1 FROM bookings b WHERE b.listing_code = l.code AND b.status = 'reserved') THEN 'reserved'
    ELSE 'available'
END`

const listingSelect = `SELECT l.*, ` + listingStatusExpr + ` AS status FROM listings l`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

// NextCode allocates the next public listing code. Codes start at 1000 and
// are independent from the row id.
func (r *ListingRepository) NextCode(ctx context.Context) (int, error) {
	var code int
	err := r.DB.GetContext(ctx, &code, `SELECT COALESCE(MAX(code), 999) + 1 FROM listings`)
	if err != nil {
		return 0, fmt.Errorf("ListingRepository.NextCode: %w", err)
	}
	return code, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	row := r.DB.QueryRowxContext(ctx, `
        INSERT INTO listings
            (code, mode, model, name, condition, storage, color, box, battery, warranty,
             price, price_formatted, exchange, rating, images)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        RETURNING id, created_at`,
		l.Code, l.Mode, l.Model, l.Name, l.Condition, l.Storage, l.Color, l.Box,
		l.Battery, l.Warranty, l.Price, l.PriceFormatted, l.Exchange, l.Rating, l.Images,
	)
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	l.Status = model.ListingAvailable
	return nil
}

func (r *ListingRepository) GetByCode(ctx context.Context, code int) (*model.Listing, error) {
	var l model.Listing
	err := r.DB.GetContext(ctx, &l, listingSelect+` WHERE l.code = $1`, code)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

type ListFilter struct {
	Status      string
	IncludeSold bool
	Limit       int
	Offset      int
	All         bool
}

// List returns listings newest first. Sold listings are hidden unless the
// filter asks for them explicitly.
func (r *ListingRepository) List(ctx context.Context, f ListFilter) ([]model.Listing, error) {
	query := `SELECT * FROM (` + listingSelect + `) x WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND x.status = $%d", idx)
		args = append(args, f.Status)
		idx++
	} else if !f.IncludeSold {
		query += fmt.Sprintf(" AND x.status <> $%d", idx)
		args = append(args, model.ListingSold)
		idx++
	}

	query += " ORDER BY x.created_at DESC"
	if !f.All {
		limit := f.Limit
		if limit <= 0 {
			limit = 20
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
		args = append(args, limit, f.Offset)
	}

	var listings []model.Listing
	if err := r.DB.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("ListingRepository.List: %w", err)
	}
	return listings, nil
}

// Update applies a partial update. fields maps column names to new values;
// unknown columns are the caller's bug and surface as SQL errors.
func (r *ListingRepository) Update(ctx context.Context, code int, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	query := "UPDATE listings SET"
	args := []interface{}{}
	for i, col := range cols {
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf(" %s = $%d", col, i+1)
		args = append(args, fields[col])
	}
	query += fmt.Sprintf(" WHERE code = $%d", len(cols)+1)
	args = append(args, code)

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, code int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM listings WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ListingRepository) SetChannelMessageID(ctx context.Context, code int, messageID int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE listings SET channel_message_id = $1 WHERE code = $2`, messageID, code)
	if err != nil {
		return fmt.Errorf("ListingRepository.SetChannelMessageID: %w", err)
	}
	return nil
}
