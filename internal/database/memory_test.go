package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/rollcall/internal/domain"
)

func newSeededStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	n, err := Seed(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, len(SeedStudents), n)
	return store
}

func TestMemoryStoreListSortsByName(t *testing.T) {
	store := newSeededStore(t)

	students, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, students, len(SeedStudents))

	assert.Equal(t, "Brown", students[0].LastName)
	assert.Equal(t, "Wilson", students[len(students)-1].LastName)
}

func TestMemoryStoreSearch(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		search string
		want   int
	}{
		{"first name, mixed case", "JoHn", 2}, // John Doe and Mike Johnson
		{"email substring", "jane.smith", 1},
		{"student id", "STU003", 1},
		{"no match", "zzz", 0},
		{"whitespace only lists all", "   ", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := store.List(ctx, tt.search)
			require.NoError(t, err)
			assert.Len(t, students, tt.want)
		})
	}
}

func TestMemoryStoreCreateAssignsIdentityAndTimestamps(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.Create(context.Background(), domain.Student{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		StudentID: "STU100",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hopper", got.LastName)
}

func TestMemoryStoreCreateIDsAreUnique(t *testing.T) {
	store := NewMemoryStore()
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		created, err := store.Create(context.Background(), domain.Student{FirstName: "A"})
		require.NoError(t, err)
		assert.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, domain.Student{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		ProfileImage: "🧮",
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID, domain.Student{
		FirstName: "Ada",
		LastName:  "King",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "King", updated.LastName)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	// An empty profile image on update keeps the stored one.
	assert.Equal(t, "🧮", updated.ProfileImage)
}

func TestMemoryStoreUpdateMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Update(context.Background(), "nope", domain.Student{})
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	created, err := store.Create(ctx, domain.Student{FirstName: "Tmp"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)

	assert.ErrorIs(t, store.Delete(ctx, created.ID), domain.ErrStudentNotFound)
}

func TestSeedIsIdempotent(t *testing.T) {
	store := newSeededStore(t)

	n, err := Seed(context.Background(), store)
	require.NoError(t, err)
	assert.Zero(t, n)

	students, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, students, len(SeedStudents))
}
