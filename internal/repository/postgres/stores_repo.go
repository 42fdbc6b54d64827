package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

type storesRepo struct{ pool *pgxpool.Pool }

const storeColumns = `id, name, email, address, owner_id, created_at, updated_at`

func (r *storesRepo) Create(ctx context.Context, st models.Store) (models.Store, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO stores (id, name, email, address, owner_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+storeColumns,
		st.ID, st.Name, st.Email, st.Address, st.OwnerID,
	).Scan(&st.ID, &st.Name, &st.Email, &st.Address, &st.OwnerID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return models.Store{}, mapPgError(err)
	}
	return st, nil
}

func (r *storesRepo) GetByID(ctx context.Context, id string) (models.Store, error) {
	var st models.Store
	err := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id).
		Scan(&st.ID, &st.Name, &st.Email, &st.Address, &st.OwnerID, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Store{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	if err != nil {
		return models.Store{}, mapPgError(err)
	}
	return st, nil
}

// GetView reads the store row with its aggregate (one grouped query) and the
// ratings list inside a single repeatable-read transaction, so the count,
// average and list always come from one committed snapshot.
func (r *storesRepo) GetView(ctx context.Context, id string) (models.StoreView, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return models.StoreView{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var view models.StoreView
	err = tx.QueryRow(ctx, `
		SELECT s.id, s.name, s.email, s.address, s.owner_id, s.created_at, s.updated_at,
		       COALESCE(ROUND(AVG(r.value)::numeric, 1), 0)::float8 AS average,
		       COUNT(r.id)::int8 AS count
		  FROM stores s
		  LEFT JOIN ratings r ON r.store_id = s.id
		 WHERE s.id = $1
		 GROUP BY s.id`,
		id,
	).Scan(&view.ID, &view.Name, &view.Email, &view.Address, &view.OwnerID,
		&view.CreatedAt, &view.UpdatedAt, &view.AverageRating, &view.RatingCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StoreView{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	if err != nil {
		return models.StoreView{}, mapPgError(err)
	}

	rows, err := tx.Query(ctx, ratingsByStoreSQL, id)
	if err != nil {
		return models.StoreView{}, mapPgError(err)
	}
	defer rows.Close()
	view.Ratings, err = scanRatingsWithRater(rows)
	if err != nil {
		return models.StoreView{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.StoreView{}, err
	}
	return view, nil
}

// List returns all matching stores with their aggregates; when viewerID is
// set, each row also carries that user's own rating of the store.
func (r *storesRepo) List(ctx context.Context, f repo.StoreFilters, viewerID *string) ([]models.StoreSummary, error) {
	where := make([]string, 0, 2)
	args := []interface{}{viewerID}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if strings.TrimSpace(f.Name) != "" {
		where = append(where, fmt.Sprintf("s.name ILIKE %s", arg("%"+strings.TrimSpace(f.Name)+"%")))
	}
	if strings.TrimSpace(f.Address) != "" {
		where = append(where, fmt.Sprintf("s.address ILIKE %s", arg("%"+strings.TrimSpace(f.Address)+"%")))
	}

	q := strings.Builder{}
	q.WriteString(`
		SELECT s.id, s.name, s.email, s.address, s.owner_id, s.created_at, s.updated_at,
		       COALESCE(ROUND(AVG(r.value)::numeric, 1), 0)::float8 AS average,
		       COUNT(r.id)::int8 AS count,
		       mr.value
		  FROM stores s
		  LEFT JOIN ratings r ON r.store_id = s.id
		  LEFT JOIN ratings mr ON mr.store_id = s.id AND mr.user_id = $1::uuid`)
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	q.WriteString(" GROUP BY s.id, mr.value ORDER BY s.name ASC")

	rows, err := r.pool.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]models.StoreSummary, 0)
	for rows.Next() {
		var s models.StoreSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID,
			&s.CreatedAt, &s.UpdatedAt, &s.AverageRating, &s.RatingCount, &s.MyRating); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *storesRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE owner_id = $1 ORDER BY name ASC`, ownerID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	out := make([]models.Store, 0)
	for rows.Next() {
		var st models.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.Address, &st.OwnerID, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *storesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "store not found")
	}
	return nil
}

func (r *storesRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&n)
	return n, err
}
