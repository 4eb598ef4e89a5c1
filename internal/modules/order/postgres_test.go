package order

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
)

// Set TEST_DATABASE_URL to run against a real database.
func newTestPostgres(t *testing.T) Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../../migrations/001_init.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return NewPostgresRepository(db)
}

func TestPostgresRepository(t *testing.T) {
	repo := newTestPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rec := validRecord()
	rec.CreatedAt, rec.UpdatedAt = now, now
	rec.LineItems = append(rec.LineItems, LineItemRecord{FrameID: "F2", SizeID: "S1", ImageReference: "b.png", Quantity: 3, UnitPrice: 100})

	id, err := repo.Insert(ctx, rec)
	require.NoError(t, err)

	again, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	processing := StatusProcessing
	later := now.Add(time.Second)
	updated, err := repo.UpdateFields(ctx, id, Precondition{Status: StatusPending}, Fields{Status: &processing, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, updated.Status)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, rec.LineItems, updated.LineItems)

	_, err = repo.UpdateFields(ctx, id, Precondition{Status: StatusPending}, Fields{Status: &processing, UpdatedAt: later})
	var conflict *apperror.ConcurrentModificationError
	require.ErrorAs(t, err, &conflict)

	_, err = repo.UpdateFields(ctx, uuid.NewString(), Precondition{Status: StatusPending}, Fields{UpdatedAt: later})
	var notFound *apperror.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	require.ErrorAs(t, err, &notFound)

	listed, err := repo.ListWhere(ctx, Filter{CustomerID: rec.CustomerID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, updated, listed[0])
}
