package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryInsertError_DuplicateReversal(t *testing.T) {
	// GIVEN: the driver error raised when a second reversal hits the
	// unique index on reversal_of
	// WHEN: translating the insert failure
	// THEN: it surfaces as ErrEntryNotReversible

	dup := errors.New("Error 1062 (23000): Duplicate entry '42' for key 'statement_entries.uq_reversal_of'")

	assert.ErrorIs(t, entryInsertError(dup), ErrEntryNotReversible)
}

func TestEntryInsertError_PassesThroughOthers(t *testing.T) {
	// GIVEN: any other insert failure
	// WHEN: translating it
	// THEN: the original error is returned unchanged

	boom := errors.New("Error 1205 (HY000): Lock wait timeout exceeded")

	got := entryInsertError(boom)
	assert.Equal(t, boom, got)
	assert.NotErrorIs(t, got, ErrEntryNotReversible)
}
