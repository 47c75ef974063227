package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "record not found", err: gorm.ErrRecordNotFound, want: CodeNotFound},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), want: CodeNotFound},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: CodeConflict},
		{name: "sqlite fk", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, want: CodeReferenceNotFound},
		{name: "postgres unique text", err: errors.New(`duplicate key value violates unique constraint (SQLSTATE 23505)`), want: CodeConflict},
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: CodeStorage},
		{name: "locked text", err: errors.New("database is locked"), want: CodeStorage},
		{name: "other", err: errors.New("boom"), want: CodeInternal},
		{name: "already classified", err: Validation("bad"), want: CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err, "operation failed")
			assert.Equal(t, tt.want, CodeOf(got))
		})
	}

	assert.NoError(t, Classify(nil, "noop"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(CodeReferenceNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(CodeUnauthorized))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternal))
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("saving: %w", Wrap(CodeStorage, base, "could not save"))

	assert.ErrorIs(t, err, base)
	assert.True(t, Is(err, CodeStorage))
	assert.Equal(t, "could not save: disk full", errors.Unwrap(err).Error())
}
