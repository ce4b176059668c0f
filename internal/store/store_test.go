package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	status, err := s.Migrations(ctx)
	require.NoError(t, err)
	require.Len(t, status, len(migrations))
	for _, m := range status {
		assert.True(t, m.Applied, m.Description)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	id, err := s.SaveRun(ctx, Run{Genome: "ATG TAA"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	r, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ATG TAA", r.Genome)
}

func TestSaveLoadRun(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	created := time.UnixMilli(1700000000123)

	in := Run{
		Genome:       "ATG GAA AGG GGA TAA",
		Mode:         "forward",
		Tokens:       5,
		Snapshots:    3,
		Instructions: 2,
		Fingerprint:  "abc123",
		Trace:        []byte{0xa2, 0x01, 0x01},
		CreatedAt:    created,
	}
	id, err := s.SaveRun(ctx, in)
	require.NoError(t, err)
	assert.Positive(t, id)

	out, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.NotEmpty(t, out.UUID)
	assert.Equal(t, in.Genome, out.Genome)
	assert.Equal(t, in.Mode, out.Mode)
	assert.Equal(t, 5, out.Tokens)
	assert.Equal(t, 3, out.Snapshots)
	assert.Equal(t, 2, out.Instructions)
	assert.Equal(t, in.Trace, out.Trace)
	assert.True(t, created.Equal(out.CreatedAt))
	assert.False(t, out.Failed())
}

func TestLoadMissingRun(t *testing.T) {
	s := openTemp(t)
	_, err := s.LoadRun(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	for _, g := range []string{"ATG TAA", "ATG GGA TAA", "ATG CCA TAA"} {
		_, err := s.SaveRun(ctx, Run{Genome: g, Fingerprint: "f-" + g, Trace: []byte("x")})
		require.NoError(t, err)
	}
	_, err := s.SaveRun(ctx, Run{Genome: "ATG GTC", Error: "unknown codon"})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "ATG GTC", runs[0].Genome)
	assert.True(t, runs[0].Failed())
	assert.Nil(t, runs[1].Trace, "listings omit traces")

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	found, err := s.FindByFingerprint(ctx, "f-ATG GGA TAA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "ATG GGA TAA", found[0].Genome)
}

func TestDeleteRun(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	id, err := s.SaveRun(ctx, Run{Genome: "ATG TAA"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteRun(ctx, id))
	_, err = s.LoadRun(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteRun(ctx, id), ErrNotFound)
}

func TestUUIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	a, err := s.SaveRun(ctx, Run{Genome: "ATG TAA"})
	require.NoError(t, err)
	b, err := s.SaveRun(ctx, Run{Genome: "ATG TAA"})
	require.NoError(t, err)

	ra, err := s.LoadRun(ctx, a)
	require.NoError(t, err)
	rb, err := s.LoadRun(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, ra.UUID, rb.UUID)

	_, err = s.SaveRun(ctx, Run{Genome: "ATG TAA", UUID: ra.UUID})
	assert.Error(t, err)
}
