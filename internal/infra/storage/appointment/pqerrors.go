package appointment

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, означающие конкурентную запись на тот же интервал
const (
	pqExclusionViolation   = "23P01"
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// IsConflict проверяет, что ошибка БД вызвана конкурентным бронированием
// Работает с любой цепочкой, содержащей *pq.Error
func IsConflict(err error) bool {
	if errors.Is(err, ErrSlotConflict) {
		return true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch string(pqErr.Code) {
	case pqExclusionViolation, pqUniqueViolation, pqSerializationFailure, pqDeadlockDetected:
		return true
	}
	return false
}
