// Package session stores the editor connections served by elabd.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally/v4"
	"github.com/uber/elabd/src/elabd/entity"
	"github.com/uber/elabd/src/elabd/internal/errors"
	"github.com/uber/elabd/src/elabd/mapper"
	"github.com/uber/elabd/src/elabd/model"
)

// Repository is an entity-scoped repository.
type Repository interface {
	Get(context.Context, uuid.UUID) (*entity.Session, error)
	GetFromContext(ctx context.Context) (*entity.Session, error)
	GetAllFromWorkspaceRoot(ctx context.Context, workspaceRoot string) ([]*entity.Session, error)
	Set(context.Context, *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	SessionCount(ctx context.Context) (int, error)
	// WorkspaceRoots returns every workspace with at least one connected editor, sorted.
	WorkspaceRoots(ctx context.Context) ([]string, error)
}

type repository struct {
	mu       sync.Mutex
	memstore map[uuid.UUID]*model.Session
	stats    tally.Scope
}

// New returns a repository to a key-value Session data store.
func New(stats tally.Scope) Repository {
	return &repository{
		memstore: make(map[uuid.UUID]*model.Session),
		stats:    stats,
	}
}

// Get returns the Session associated with the given id.
func (r *repository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.memstore[id]
	if !ok {
		return nil, &errors.UUIDNotFoundError{UUID: id}
	}
	return mapper.ModelToSession(f)
}

// GetFromContext returns the Session associated with the given context.
func (r *repository) GetFromContext(ctx context.Context) (*entity.Session, error) {
	id, err := mapper.ContextToSessionUUID(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Set sets the Session to its associated uuid.
func (r *repository) Set(ctx context.Context, f *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f == nil {
		return errors.New("can't save nil session")
	}
	r.memstore[f.UUID] = mapper.SessionToModel(f)
	r.stats.Gauge("active_connections").Update(float64(len(r.memstore)))
	return nil
}

// Delete removes the Session associated with the given id.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.memstore, id)
	r.stats.Gauge("active_connections").Update(float64(len(r.memstore)))
	return nil
}

// SessionCount returns the total count of active sessions.
func (r *repository) SessionCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.memstore), nil
}

// GetAllFromWorkspaceRoot returns all sessions for a specific workspaceRoot.
func (r *repository) GetAllFromWorkspaceRoot(ctx context.Context, workspaceRoot string) ([]*entity.Session, error) {
	found := make([]*entity.Session, 0)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.memstore {
		if s.WorkspaceRoot == workspaceRoot {
			sess, err := mapper.ModelToSession(s)
			if err == nil {
				found = append(found, sess)
			}
		}
	}

	return found, nil
}

func (r *repository) WorkspaceRoots(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	roots := make([]string, 0)
	for _, s := range r.memstore {
		if s.WorkspaceRoot == "" {
			continue
		}
		if _, ok := seen[s.WorkspaceRoot]; ok {
			continue
		}
		seen[s.WorkspaceRoot] = struct{}{}
		roots = append(roots, s.WorkspaceRoot)
	}
	sort.Strings(roots)
	return roots, nil
}
