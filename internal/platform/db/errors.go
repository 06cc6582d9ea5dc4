package db

import (
	"github.com/medshift/medshift/internal/platform/apperr"
)

// Classify turns a pgx error into one of the apperr kinds. entity names the
// row being touched and ends up in the NotFound message.
func Classify(err error, entity string) error {
	if err == nil {
		return nil
	}
	if IsNoRows(err) {
		return apperr.NotFound("%s not found", entity)
	}
	switch PgCode(err) {
	case CodeExclusionViolation:
		return apperr.Conflict("doctor already has a shift assigned in the specified time range")
	case CodeForeignKeyViolation:
		return apperr.Validation("%s references a record that does not exist", entity)
	case CodeUniqueViolation:
		return apperr.Conflict("%s already exists", entity)
	case CodeCheckViolation:
		return apperr.Validation("%s violates a data constraint", entity)
	case CodeNumericOutOfRange:
		return apperr.Validation("%s has an amount out of range", entity)
	case CodeSerializationFailure, CodeDeadlockDetected:
		return apperr.Transaction(err, "concurrent update on %s, retry the request", entity)
	}
	return apperr.Transaction(err, "persist %s", entity)
}
