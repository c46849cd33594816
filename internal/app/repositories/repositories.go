package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx the repositories rely on.
// Repositories are constructed on the pool; WithTx rebinds them to a
// transaction so multi-write use cases commit or roll back atomically.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ThesisRepository       *ThesisRepository
	FeedbackRepository     *FeedbackRepository
	TokenRepository        *TokenRepository
	VerificationRepository *VerificationTokenRepository
	NotificationRepository *NotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		ThesisRepository:       NewThesisRepository(db),
		FeedbackRepository:     NewFeedbackRepository(db),
		TokenRepository:        NewTokenRepository(db),
		VerificationRepository: NewVerificationTokenRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
