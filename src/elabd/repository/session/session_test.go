package session

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/errors"
	"go.uber.org/goleak"
)

func TestSessionRepository(t *testing.T) {
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	t.Run("should Set and Get successfully", func(t *testing.T) {
		var id uuid.UUID
		s := &entity.Session{UUID: id, ClientName: entity.ClientNameCursor}

		repository := New(testScope)

		require.NoError(t, repository.Set(context.Background(), s))
		val, err := repository.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, val.UUID)
		assert.Equal(t, entity.ClientNameCursor, val.ClientName)
	})

	t.Run("should fail to get something that was not Set", func(t *testing.T) {
		repository := New(testScope)

		id := uuid.Must(uuid.NewV4())
		_, err := repository.Get(context.Background(), id)
		require.Error(t, err)
		var nf *errors.UUIDNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, id, nf.UUID)
	})

	t.Run("should reject nil sessions", func(t *testing.T) {
		assert.Error(t, New(testScope).Set(context.Background(), nil))
	})
}

func TestGetFromContext(t *testing.T) {
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	t.Run("should get when uuid is in context", func(t *testing.T) {
		var id uuid.UUID
		repository := New(testScope)
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
		require.NoError(t, repository.Set(ctx, &entity.Session{UUID: id}))
		val, err := repository.GetFromContext(ctx)
		assert.NoError(t, err)
		assert.Equal(t, id, val.UUID)
	})

	t.Run("should fail when uuid is missing from context", func(t *testing.T) {
		_, err := New(testScope).GetFromContext(context.Background())
		var nf *errors.NoSessionFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("should fail in context is not set in repository", func(t *testing.T) {
		var id uuid.UUID
		ctx := context.WithValue(context.Background(), entity.SessionContextKey, id)
		_, err := New(testScope).GetFromContext(ctx)
		assert.Error(t, err)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	repository := New(testScope)

	session1 := &entity.Session{UUID: uuid.Must(uuid.NewV4())}
	session2 := &entity.Session{UUID: uuid.Must(uuid.NewV4())}

	require.NoError(t, repository.Set(ctx, session1))
	require.NoError(t, repository.Set(ctx, session2))

	// First deletion is successful. Multiple deletions return no error.
	assert.NoError(t, repository.Delete(ctx, session2.UUID))
	assert.NoError(t, repository.Delete(ctx, session2.UUID))
	_, err := repository.Get(ctx, session2.UUID)
	assert.Error(t, err)

	// Other session unaffected.
	result, err := repository.Get(ctx, session1.UUID)
	assert.NoError(t, err)
	assert.Equal(t, session1, result)
}

func TestSessionCount(t *testing.T) {
	ctx := context.Background()
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))
	repository := New(testScope)

	session1 := &entity.Session{UUID: uuid.Must(uuid.NewV4())}
	session2 := &entity.Session{UUID: uuid.Must(uuid.NewV4())}

	count, err := repository.SessionCount(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, repository.Set(ctx, session1))
	require.NoError(t, repository.Set(ctx, session2))
	count, _ = repository.SessionCount(ctx)
	assert.Equal(t, 2, count)
	assert.Equal(t, float64(2), testScope.Snapshot().Gauges()["testing.active_connections+"].Value())

	require.NoError(t, repository.Delete(ctx, session2.UUID))
	count, _ = repository.SessionCount(ctx)
	assert.Equal(t, 1, count)
}

func TestGetAllFromWorkspaceRoot(t *testing.T) {
	ctx := context.Background()
	repository := New(tally.NewTestScope("testing", make(map[string]string, 0)))

	session1 := &entity.Session{UUID: uuid.Must(uuid.NewV4()), WorkspaceRoot: "root1"}
	session2 := &entity.Session{UUID: uuid.Must(uuid.NewV4()), WorkspaceRoot: "root2"}
	session3 := &entity.Session{UUID: uuid.Must(uuid.NewV4()), WorkspaceRoot: "root1"}
	session4 := &entity.Session{UUID: uuid.Must(uuid.NewV4())}

	for _, s := range []*entity.Session{session1, session2, session3, session4} {
		require.NoError(t, repository.Set(ctx, s))
	}

	sessions, err := repository.GetAllFromWorkspaceRoot(ctx, "root1")
	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Contains(t, sessions, session1)
	assert.Contains(t, sessions, session3)

	sessions, err = repository.GetAllFromWorkspaceRoot(ctx, "root3")
	assert.NoError(t, err)
	assert.Empty(t, sessions)

	roots, err := repository.WorkspaceRoots(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"root1", "root2"}, roots)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
