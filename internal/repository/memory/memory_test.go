package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/crew-service/internal/domain"
)

func seedCrew(t *testing.T, r *CrewRepository, members, admins []string) {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &domain.Crew{ID: "c1", Name: "crew", Members: members, Admins: admins}))
}

func TestUserRepository_CreateRejectsDuplicateUID(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	require.NoError(t, r.Create(ctx, &domain.User{ID: "1", UID: "alice"}))
	assert.ErrorIs(t, r.Create(ctx, &domain.User{ID: "2", UID: "alice"}), domain.ErrUserExists)

	u, err := r.GetByUID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)

	_, err = r.GetByUID(ctx, "bob")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ConditionalPointerWrites(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	require.NoError(t, r.Create(ctx, &domain.User{ID: "1", UID: "alice"}))

	ok, err := r.SetCrewIfAbsent(ctx, "1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SetCrewIfAbsent(ctx, "1", "c2")
	require.NoError(t, err)
	assert.False(t, ok, "pointer already set")

	ok, err = r.ClearCrew(ctx, "1", "c2")
	require.NoError(t, err)
	assert.False(t, ok, "pointer references another crew")

	ok, err = r.ClearCrew(ctx, "1", "c1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.SetCrewIfAbsent(ctx, "missing", "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_GetByIDsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, r.Create(ctx, &domain.User{ID: id, UID: "uid-" + id}))
	}

	users, err := r.GetByIDs(ctx, []string{"c", "missing", "a"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "c", users[0].ID)
	assert.Equal(t, "a", users[1].ID)
}

func TestCrewRepository_CreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	r := NewCrewRepository()
	seedCrew(t, r, []string{"a"}, []string{"a"})

	err := r.Create(ctx, &domain.Crew{ID: "c1", Name: "other", Members: []string{"b"}, Admins: []string{"b"}})
	assert.ErrorIs(t, err, ErrCrewExists)

	crew, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "crew", crew.Name)
	assert.Equal(t, []string{"a"}, crew.Members)
}

func TestCrewRepository_RemoveMemberFilters(t *testing.T) {
	ctx := context.Background()
	r := NewCrewRepository()
	seedCrew(t, r, []string{"a", "b", "c"}, []string{"a"})

	ok, err := r.RemoveMember(ctx, "c1", "a")
	require.NoError(t, err)
	assert.False(t, ok, "sole admin cannot be removed")

	ok, err = r.RemoveMember(ctx, "c1", "x")
	require.NoError(t, err)
	assert.False(t, ok, "not a member")

	ok, err = r.AddAdmin(ctx, "c1", "b")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.RemoveMember(ctx, "c1", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	crew, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, crew.Members)
	assert.Equal(t, []string{"a"}, crew.Admins)
	require.NoError(t, crew.Validate())
}

func TestCrewRepository_AdminFilters(t *testing.T) {
	ctx := context.Background()
	r := NewCrewRepository()
	seedCrew(t, r, []string{"a", "b"}, []string{"a"})

	ok, _ := r.AddAdmin(ctx, "c1", "x")
	assert.False(t, ok, "non-member cannot become admin")

	ok, _ = r.AddAdmin(ctx, "c1", "a")
	assert.False(t, ok, "already admin")

	ok, _ = r.RemoveAdmin(ctx, "c1", "a")
	assert.False(t, ok, "sole admin")

	ok, _ = r.RemoveAdmin(ctx, "c1", "b")
	assert.False(t, ok, "not an admin")

	ok, _ = r.AddMember(ctx, "missing", "a")
	assert.False(t, ok, "unknown crew never matches")
}

func TestCrewRepository_DeleteIfSoleMember(t *testing.T) {
	ctx := context.Background()
	r := NewCrewRepository()
	seedCrew(t, r, []string{"a", "b"}, []string{"a"})

	ok, err := r.DeleteIfSoleMember(ctx, "c1", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.RemoveMember(ctx, "c1", "b")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.DeleteIfSoleMember(ctx, "c1", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrCrewNotFound)
}

func TestCrewRepository_ConcurrentAddAdminIsSetAdd(t *testing.T) {
	ctx := context.Background()
	r := NewCrewRepository()
	seedCrew(t, r, []string{"a", "b"}, []string{"a"})

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := r.AddAdmin(ctx, "c1", "b"); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	crew, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, crew.Admins)
}
