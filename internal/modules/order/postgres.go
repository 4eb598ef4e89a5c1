package order

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

const orderColumns = `id, customer_id, total_price, status,
	ship_first_name, ship_last_name, ship_street, ship_city, ship_state, ship_postal_code,
	assigned_vendor_id, created_at, updated_at, cancelled_at`

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// Insert writes the order and all its line items inside a single transaction.
func (r *postgresRepo) Insert(ctx context.Context, rec Record) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", classify("begin insert order", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, customer_id, total_price, status,
		   ship_first_name, ship_last_name, ship_street, ship_city, ship_state, ship_postal_code,
		   assigned_vendor_id, created_at, updated_at, cancelled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.CustomerID, rec.TotalPrice, rec.Status,
		rec.ShipFirstName, rec.ShipLastName, rec.ShipStreet, rec.ShipCity, rec.ShipState, rec.ShipPostalCode,
		rec.AssignedVendorID, rec.CreatedAt, rec.UpdatedAt, rec.CancelledAt)
	if err != nil {
		return "", classify("insert order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// already written by an earlier attempt
		return rec.ID, nil
	}

	for i, item := range rec.LineItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_line_items
			  (order_id, position, frame_id, size_id, image_reference, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			rec.ID, i, item.FrameID, item.SizeID, item.ImageReference, item.Quantity, item.UnitPrice)
		if err != nil {
			return "", classify("insert order_line_item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", classify("commit insert order", err)
	}
	return rec.ID, nil
}

// UpdateFields runs the conditional update and re-validates the result before committing.
func (r *postgresRepo) UpdateFields(ctx context.Context, id string, pre Precondition, f Fields) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
	}

	args := []interface{}{id, pre.Status, f.UpdatedAt}
	sets := []string{"updated_at=$3"}
	if f.Status != nil {
		args = append(args, *f.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.ClearVendor {
		sets = append(sets, "assigned_vendor_id=NULL")
	} else if f.AssignedVendorID != nil {
		args = append(args, *f.AssignedVendorID)
		sets = append(sets, fmt.Sprintf("assigned_vendor_id=$%d", len(args)))
	}
	if f.CancelledAt != nil {
		args = append(args, *f.CancelledAt)
		sets = append(sets, fmt.Sprintf("cancelled_at=$%d", len(args)))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, classify("begin update order", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id=$1 AND status=$2 RETURNING %s`,
		strings.Join(sets, ", "), orderColumns)
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
			return Record{}, classify("check order", err)
		}
		if !exists {
			return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
		}
		return Record{}, &apperror.ConcurrentModificationError{Resource: orderResource, ID: id, Expected: string(pre.Status)}
	}
	if err != nil {
		return Record{}, classify("update order", err)
	}

	if rec.LineItems, err = listLineItems(ctx, tx, id); err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, classify("commit update order", err)
	}
	return rec, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
	}
	rec, err := scanRecord(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, &apperror.NotFoundError{Resource: orderResource, Key: "id", Value: id}
	}
	if err != nil {
		return Record{}, classify("get order", err)
	}
	if rec.LineItems, err = listLineItems(ctx, r.db, id); err != nil {
		return Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *postgresRepo) ListWhere(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE TRUE`
	var args []interface{}
	if f.CustomerID != "" {
		if _, err := uuid.Parse(f.CustomerID); err != nil {
			return []Record{}, nil
		}
		args = append(args, f.CustomerID)
		query += fmt.Sprintf(` AND customer_id=$%d`, len(args))
	}
	if f.VendorID != "" {
		if _, err := uuid.Parse(f.VendorID); err != nil {
			return []Record{}, nil
		}
		args = append(args, f.VendorID)
		query += fmt.Sprintf(` AND assigned_vendor_id=$%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("list orders", err)
	}
	defer rows.Close()

	recs := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, classify("scan order", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list orders", err)
	}

	for i := range recs {
		if recs[i].LineItems, err = listLineItems(ctx, r.db, recs[i].ID); err != nil {
			return nil, err
		}
		if err := recs[i].Validate(); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func scanRecord(scan func(...interface{}) error) (Record, error) {
	var rec Record
	var vendorID sql.NullString
	var cancelledAt sql.NullTime
	err := scan(
		&rec.ID, &rec.CustomerID, &rec.TotalPrice, &rec.Status,
		&rec.ShipFirstName, &rec.ShipLastName, &rec.ShipStreet, &rec.ShipCity, &rec.ShipState, &rec.ShipPostalCode,
		&vendorID, &rec.CreatedAt, &rec.UpdatedAt, &cancelledAt)
	if err != nil {
		return Record{}, err
	}
	if vendorID.Valid {
		v := vendorID.String
		rec.AssignedVendorID = &v
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time.UTC()
		rec.CancelledAt = &t
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func listLineItems(ctx context.Context, q queryer, orderID string) ([]LineItemRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT frame_id, size_id, image_reference, quantity, unit_price
		FROM order_line_items WHERE order_id=$1 ORDER BY position ASC`, orderID)
	if err != nil {
		return nil, classify("list order_line_items", err)
	}
	defer rows.Close()

	var items []LineItemRecord
	for rows.Next() {
		var item LineItemRecord
		if err := rows.Scan(&item.FrameID, &item.SizeID, &item.ImageReference, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, classify("scan order_line_item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list order_line_items", err)
	}
	return items, nil
}

// classify wraps connection, timeout and serialization failures as TransientError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &apperror.TransientError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08": // connection_exception
			return true
		case pqErr.Code == "40001", pqErr.Code == "40P01", pqErr.Code == "57P01", pqErr.Code == "53300":
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
