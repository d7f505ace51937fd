package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gvan1961/frontdivan/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestNightsBetween(t *testing.T) {
	// GIVEN: check-in and checkout timestamps at arbitrary times of day
	// WHEN: computing the night count
	// THEN: calendar days between the UTC dates, zero for inverted ranges

	day := func(d int, hour int) time.Time {
		return time.Date(2026, time.March, d, hour, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, uint32(1), nightsBetween(day(10, 14), day(11, 11)))
	assert.Equal(t, uint32(3), nightsBetween(day(10, 23), day(13, 1)))
	assert.Equal(t, uint32(0), nightsBetween(day(10, 8), day(10, 20)))
	assert.Equal(t, uint32(0), nightsBetween(day(12, 8), day(10, 8)))
}

func TestGetOperatorID_AcceptsClaimTypes(t *testing.T) {
	// GIVEN: operator_id stored as the various types the JWT layer may produce
	// WHEN: extracting the operator ID
	// THEN: each decodes to the same uint64

	for _, v := range []interface{}{uint64(42), int(42), int64(42), float64(42), "42"} {
		c, _ := newTestContext(t)
		c.Set("operator_id", v)

		id, err := getOperatorID(c)

		require.NoError(t, err)
		assert.Equal(t, uint64(42), id)
	}
}

func TestGetOperatorID_MissingOrGarbage(t *testing.T) {
	c, _ := newTestContext(t)
	_, err := getOperatorID(c)
	assert.Error(t, err)

	c, _ = newTestContext(t)
	c.Set("operator_id", "not-a-number")
	_, err = getOperatorID(c)
	assert.Error(t, err)
}

func TestWriteRepoError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{repository.ErrValidation, http.StatusBadRequest},
		{repository.ErrInvalidState, http.StatusConflict},
		{repository.ErrInsufficientStock, http.StatusConflict},
		{repository.ErrEntryNotReversible, http.StatusConflict},
		{repository.ErrTillAlreadyOpen, http.StatusConflict},
		{repository.ErrDiscountExceedsCharges, http.StatusUnprocessableEntity},
		{repository.ErrPaymentExceedsBalance, http.StatusUnprocessableEntity},
		{repository.ErrBalanceOutstanding, http.StatusUnprocessableEntity},
		{repository.ErrCapacityExceeded, http.StatusUnprocessableEntity},
		{repository.ErrInvalidDateRange, http.StatusUnprocessableEntity},
		{repository.ErrTillClosed, http.StatusForbidden},
		{repository.ErrForbidden, http.StatusForbidden},
	}

	for _, tc := range cases {
		c, rec := newTestContext(t)
		require.NoError(t, writeRepoError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestWriteRepoError_TillClosedCarriesType(t *testing.T) {
	// GIVEN: a payment rejected because no till session is open
	// WHEN: writing the error response
	// THEN: the body carries the machine-readable TILL_CLOSED type

	c, rec := newTestContext(t)

	require.NoError(t, writeRepoError(c, repository.ErrTillClosed))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"TILL_CLOSED"`)
}
