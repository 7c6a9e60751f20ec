package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edvise/core"
)

const (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind parses `?ordering=a,-b`; a leading dash sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryBool parses an optional boolean query param; nil when absent.
func queryBool(ctx echo.Context, name string) (*bool, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewFieldError(name, errInvalidBool)
	}
	return &b, nil
}

// queryTime parses an optional date (2006-01-02) or RFC 3339 time query param; zero when absent.
func queryTime(ctx echo.Context, name string) (time.Time, error) {
	t, _, err := parseQueryTime(ctx, name)
	return t, err
}

// queryTimeUntil is queryTime for inclusive upper bounds: a plain date covers that whole day.
func queryTimeUntil(ctx echo.Context, name string) (time.Time, error) {
	t, dateOnly, err := parseQueryTime(ctx, name)
	if err != nil || !dateOnly {
		return t, err
	}
	return t.AddDate(0, 0, 1).Add(-time.Microsecond), nil
}

func parseQueryTime(ctx echo.Context, name string) (t time.Time, dateOnly bool, err error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, false, nil
	}
	if t, err = time.Parse(dateLayout, val); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, val); err != nil {
		return time.Time{}, false, core.NewFieldError(name, errInvalidDate)
	}
	return t.UTC(), false, nil
}
