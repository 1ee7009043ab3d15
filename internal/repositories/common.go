package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"netowork_backend/internal/models"
)

const uniqueViolationCode = "23505"

// RunInTx выполняет fn в транзакции: коммит при nil, откат при ошибке или панике
func RunInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

// isUniqueViolation проверяет нарушение уникальности.
// Если переданы имена ограничений, должно совпасть одно из них.
func isUniqueViolation(err error, constraints ...string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// pageTotal - общее число строк для страницы. COUNT(*) OVER() приходит
// только вместе со строками, поэтому за концом выборки считаем отдельно.
func pageTotal(rows int, windowTotal int64, page models.Page, count func(total *int64) error) (int64, error) {
	if rows > 0 {
		return windowTotal, nil
	}
	if page.Offset() == 0 {
		return 0, nil
	}
	var total int64
	if err := count(&total); err != nil {
		return 0, err
	}
	return total, nil
}
