package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ratehub/ratehub-backend/internal/apperr"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeInvalidTextRepr      = "22P02"
)

// mapPgError translates a postgres constraint/isolation signal into the
// service error taxonomy. Unrecognized errors pass through as internal.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation, codeSerializationFailure:
		return apperr.Wrap(err, apperr.KindConflict, "concurrent write conflict")
	case codeForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "ratings_user_id_fkey":
			return apperr.Wrap(err, apperr.KindNotFound, "user not found")
		case "ratings_store_id_fkey":
			return apperr.Wrap(err, apperr.KindNotFound, "store not found")
		}
		return apperr.Wrap(err, apperr.KindNotFound, "referenced entity not found")
	case codeCheckViolation:
		return apperr.Wrap(err, apperr.KindInvalidArgument, "value violates constraint")
	case codeInvalidTextRepr:
		return apperr.Wrap(err, apperr.KindInvalidArgument, "malformed identifier")
	}
	return err
}
