package handler // handler defines http handlers

import (
    "database/sql" // for sentinel errors returned from repositories
    "errors"       // for errors.Is comparisons
    "net/http"     // HTTP status codes
    "strconv"      // parsing path parameters
    "time"         // date filter parsing

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/snooker-house-api/internal/repository" // repository holds data access layer
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT claims decode numbers as float64, so several source
// types are accepted.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, error) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, errors.New("invalid id")
    }
    return n, nil
}

// queryDateRange reads the date_from/date_to query parameters in
// YYYY-MM-DD form.  Both days are inclusive: the upper bound returned
// is the midnight after date_to, and the repositories compare with a
// strict <, so the whole of date_to is covered and a record stamped
// exactly at the following midnight is not.  Malformed values are
// ignored.
func queryDateRange(c echo.Context) (from, to *time.Time) {
    if v := c.QueryParam("date_from"); v != "" {
        if t, err := time.Parse("2006-01-02", v); err == nil {
            from = &t
        }
    }
    if v := c.QueryParam("date_to"); v != "" {
        if t, err := time.Parse("2006-01-02", v); err == nil {
            end := t.Add(24 * time.Hour)
            to = &end
        }
    }
    return from, to
}

// respondRepoError maps repository sentinel errors onto HTTP
// responses so every handler reports failures uniformly.
func respondRepoError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, sql.ErrNoRows):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, repository.ErrInvalidState):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state"})
    case errors.Is(err, repository.ErrInsufficientStock):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
    case errors.Is(err, repository.ErrTableOccupied):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table occupied"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
}
