package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) ListFrames(ctx context.Context) ([]*Frame, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, image_url, base_price, is_active, created_at, updated_at
		FROM frames ORDER BY base_price ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []*Frame
	for rows.Next() {
		f := &Frame{}
		if err := rows.Scan(&f.ID, &f.Name, &f.ImageURL, &f.BasePrice, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

func (r *postgresRepo) ListSizes(ctx context.Context) ([]*Size, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, dimensions, price_multiplier, is_active, created_at, updated_at
		FROM sizes ORDER BY price_multiplier ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sizes: %w", err)
	}
	defer rows.Close()

	var sizes []*Size
	for rows.Next() {
		s := &Size{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Dimensions, &s.PriceMultiplier, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sizes = append(sizes, s)
	}
	return sizes, rows.Err()
}
