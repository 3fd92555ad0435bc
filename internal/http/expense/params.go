package expense

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// ParseListParams reads the expense query string shared by listing, summary
// and export endpoints. Only the limit is checked here; the rest is validated
// when the service resolves the query.
func ParseListParams(r *http.Request) (expense.ListParams, error) {
	q := r.URL.Query()

	params := expense.ListParams{
		CategoryID: q.Get("category_id"),
		Filter:     q.Get("filter"),
		Start:      q.Get("start_date"),
		End:        q.Get("end_date"),
	}

	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return expense.ListParams{}, expense.ErrInvalidLimit
		}

		params.Limit = &n
	}

	return params, nil
}

func parseBool(r *http.Request, key string) (bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean", key)
	}

	return b, nil
}
