package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrQuotaExceeded is returned by CreateWithQuota when the user already has
// the maximum number of shares in the current window.
var ErrQuotaExceeded = errors.New("monthly vibe quota exceeded")

const (
	pgRaiseException  = "P0001"
	pgUniqueViolation = "23505"
	quotaTriggerHint  = "vibe_quota"
)

// isQuotaTrigger reports whether err was raised by the enforce_monthly_vibe_quota trigger.
func isQuotaTrigger(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgRaiseException && pgErr.Hint == quotaTriggerHint
	}
	return false
}

// IsUniqueViolation reports whether err is a unique-constraint failure on
// either Postgres or SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
