package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

type ratingsRepo struct{ pool *pgxpool.Pool }

const ratingColumns = `id, store_id, user_id, value, comment, created_at, updated_at`

// (xmax = 0) distinguishes a fresh insert from the conflict-update path.
const submitSQL = `
INSERT INTO ratings (id, store_id, user_id, value, comment)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (store_id, user_id)
DO UPDATE SET value = EXCLUDED.value, comment = EXCLUDED.comment, updated_at = now()
RETURNING ` + ratingColumns + `, (xmax = 0) AS inserted`

const aggregateSQL = `
SELECT COALESCE(ROUND(AVG(value)::numeric, 1), 0)::float8 AS average,
       COUNT(*)::int8 AS count
FROM ratings
WHERE store_id = $1`

// withTx runs fn inside a single read-committed transaction. Same-pair
// submit races serialize on the row lock behind the unique index, so exactly
// one row survives and the loser takes the update path. The transaction is
// rolled back in full on any error, never leaving a half-applied write for
// concurrent readers.
func (r *ratingsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	return nil
}

// Submit upserts the (user, store) rating and reads back the store aggregate
// in the same transaction. The returned outcome reports create vs. update.
func (r *ratingsRepo) Submit(ctx context.Context, p repo.RatingSubmission) (models.Rating, models.RatingOutcome, models.RatingAggregate, error) {
	var (
		rating  models.Rating
		outcome models.RatingOutcome
		agg     models.RatingAggregate
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM stores WHERE id = $1)`, p.StoreID).Scan(&exists); err != nil {
			return mapPgError(err)
		}
		if !exists {
			return apperr.New(apperr.KindNotFound, "store not found")
		}

		var inserted bool
		err := tx.QueryRow(ctx, submitSQL, uuid.NewString(), p.StoreID, p.UserID, p.Value, p.Comment).Scan(
			&rating.ID, &rating.StoreID, &rating.UserID, &rating.Value, &rating.Comment,
			&rating.CreatedAt, &rating.UpdatedAt, &inserted,
		)
		if err != nil {
			return mapPgError(err)
		}
		outcome = models.OutcomeUpdated
		if inserted {
			outcome = models.OutcomeCreated
		}

		return tx.QueryRow(ctx, aggregateSQL, p.StoreID).Scan(&agg.Average, &agg.Count)
	})
	if err != nil {
		return models.Rating{}, "", models.RatingAggregate{}, err
	}
	return rating, outcome, agg, nil
}

// Retract deletes the (user, store) rating and reads back the new aggregate
// atomically. Missing ratings leave all state unchanged.
func (r *ratingsRepo) Retract(ctx context.Context, userID, storeID string) (models.Rating, models.RatingAggregate, error) {
	var (
		rating models.Rating
		agg    models.RatingAggregate
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`DELETE FROM ratings WHERE store_id = $1 AND user_id = $2 RETURNING `+ratingColumns,
			storeID, userID,
		).Scan(&rating.ID, &rating.StoreID, &rating.UserID, &rating.Value, &rating.Comment, &rating.CreatedAt, &rating.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.New(apperr.KindNotFound, "rating not found")
		}
		if err != nil {
			return mapPgError(err)
		}
		return tx.QueryRow(ctx, aggregateSQL, storeID).Scan(&agg.Average, &agg.Count)
	})
	if err != nil {
		return models.Rating{}, models.RatingAggregate{}, err
	}
	return rating, agg, nil
}

func (r *ratingsRepo) Get(ctx context.Context, userID, storeID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.pool.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE store_id = $1 AND user_id = $2`,
		storeID, userID,
	).Scan(&rating.ID, &rating.StoreID, &rating.UserID, &rating.Value, &rating.Comment, &rating.CreatedAt, &rating.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPgError(err)
	}
	return &rating, nil
}

func (r *ratingsRepo) ListByUser(ctx context.Context, userID string) ([]models.RatingWithStore, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.store_id, r.user_id, r.value, r.comment, r.created_at, r.updated_at, s.name
		  FROM ratings r
		  JOIN stores s ON s.id = r.store_id
		 WHERE r.user_id = $1
		 ORDER BY r.updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]models.RatingWithStore, 0)
	for rows.Next() {
		var rw models.RatingWithStore
		if err := rows.Scan(&rw.ID, &rw.StoreID, &rw.UserID, &rw.Value, &rw.Comment, &rw.CreatedAt, &rw.UpdatedAt, &rw.StoreName); err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

func (r *ratingsRepo) ListByStore(ctx context.Context, storeID string) ([]models.RatingWithRater, error) {
	rows, err := r.pool.Query(ctx, ratingsByStoreSQL, storeID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanRatingsWithRater(rows)
}

func (r *ratingsRepo) Aggregate(ctx context.Context, storeID string) (models.RatingAggregate, error) {
	var agg models.RatingAggregate
	if err := r.pool.QueryRow(ctx, aggregateSQL, storeID).Scan(&agg.Average, &agg.Count); err != nil {
		return models.RatingAggregate{}, mapPgError(err)
	}
	return agg, nil
}

func (r *ratingsRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n)
	return n, err
}

const ratingsByStoreSQL = `
SELECT r.id, r.store_id, r.user_id, r.value, r.comment, r.created_at, r.updated_at, u.name
  FROM ratings r
  JOIN users u ON u.id = r.user_id
 WHERE r.store_id = $1
 ORDER BY r.updated_at DESC`

func scanRatingsWithRater(rows pgx.Rows) ([]models.RatingWithRater, error) {
	out := make([]models.RatingWithRater, 0)
	for rows.Next() {
		var rw models.RatingWithRater
		if err := rows.Scan(&rw.ID, &rw.StoreID, &rw.UserID, &rw.Value, &rw.Comment, &rw.CreatedAt, &rw.UpdatedAt, &rw.RaterName); err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}
