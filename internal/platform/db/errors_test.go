package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medshift/medshift/internal/platform/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.ErrNotFound},
		{"exclusion", &pgconn.PgError{Code: CodeExclusionViolation}, apperr.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: CodeForeignKeyViolation}, apperr.ErrValidation},
		{"unique", &pgconn.PgError{Code: CodeUniqueViolation}, apperr.ErrConflict},
		{"check", &pgconn.PgError{Code: CodeCheckViolation}, apperr.ErrValidation},
		{"numeric overflow", &pgconn.PgError{Code: CodeNumericOutOfRange}, apperr.ErrValidation},
		{"serialization", &pgconn.PgError{Code: CodeSerializationFailure}, apperr.ErrTransaction},
		{"deadlock", &pgconn.PgError{Code: CodeDeadlockDetected}, apperr.ErrTransaction},
		{"other", errors.New("connection reset"), apperr.ErrTransaction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err, "shift"); !errors.Is(got, tt.want) {
				t.Errorf("Classify() = %v, want kind %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if Classify(nil, "shift") != nil {
		t.Error("expected nil")
	}
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := &pgconn.PgError{Code: CodeSerializationFailure}
	if got := Classify(cause, "shift"); !errors.Is(got, cause) {
		t.Error("expected transaction error to wrap the pg error")
	}
}
