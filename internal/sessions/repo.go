package sessions

import "context"

// Repo defines persistence operations for sessions.
type Repo interface {
	Create(ctx context.Context, session Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	Update(ctx context.Context, session Session) error
	List(ctx context.Context, limit, offset int) ([]Session, error)
	Delete(ctx context.Context, sessionID string) error
}
