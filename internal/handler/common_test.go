package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/snooker-house-api/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  uint64
		ok    bool
	}{
		{"uint64", uint64(12), 12, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"float64 from jwt claims", float64(42), 42, true},
		{"numeric string", "15", 15, true},
		{"garbage string", "abc", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			if tc.value != nil {
				c.Set("user_id", tc.value)
			}
			got, err := getUserID(c)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	c, _ := newTestContext(t)
	c.SetParamNames("id")
	c.SetParamValues("123")
	n, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(123), n)

	for _, bad := range []string{"0", "-4", "abc", ""} {
		c, _ := newTestContext(t)
		c.SetParamNames("id")
		c.SetParamValues(bad)
		_, err := pathID(c, "id")
		assert.Error(t, err, "value %q should be rejected", bad)
	}
}

func TestQueryDateRange(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date_from=2026-01-01&date_to=2026-01-02", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	from, to := queryDateRange(c)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	// Upper bound is the midnight after date_to.
	assert.Equal(t, time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), *to)

	// Repositories compare with a strict <, so the whole of date_to
	// is inside the window and the following midnight is not.
	lastMoment := time.Date(2026, 1, 2, 23, 59, 59, 0, time.UTC)
	nextMidnight := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	assert.True(t, lastMoment.Before(*to))
	assert.False(t, nextMidnight.Before(*to))
}

func TestQueryDateRangeMalformed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?date_from=01-02-2026&date_to=garbage", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	from, to := queryDateRange(c)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestRespondRepoError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{sql.ErrNoRows, http.StatusNotFound},
		{repository.ErrForbidden, http.StatusForbidden},
		{repository.ErrConflict, http.StatusConflict},
		{repository.ErrInvalidState, http.StatusBadRequest},
		{repository.ErrInsufficientStock, http.StatusBadRequest},
		{repository.ErrTableOccupied, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := newTestContext(t)
		require.NoError(t, respondRepoError(c, tc.err))
		assert.Equal(t, tc.code, rec.Code, "error %v", tc.err)
	}
}
