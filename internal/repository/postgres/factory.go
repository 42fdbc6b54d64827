package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

type Repositories struct {
	Users     repo.Users
	Stores    repo.Stores
	Ratings   repo.Ratings
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Stores:    &storesRepo{pool},
		Ratings:   &ratingsRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
