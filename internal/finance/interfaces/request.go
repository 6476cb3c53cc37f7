package interfaces

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
	"github.com/sebuszqo/HomeBudget/internal/user"
)

type (
	jsonResponder  func(w http.ResponseWriter, status int, payload interface{})
	errorResponder func(w http.ResponseWriter, status int, message string, errors ...[]string)
)

func currentUserID(r *http.Request) (int64, bool) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		return 0, false
	}
	return u.ID, true
}

func parsePathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// parseExpenseFilter reads the optional list filters; every malformed value is reported.
func parseExpenseFilter(query url.Values) (domain.ExpenseFilter, error) {
	var (
		filter domain.ExpenseFilter
		errs   = &financeErrors.ValidationErrors{}
	)

	if raw := query.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add(financeErrors.NewFieldValidationError("category_id", "must be an integer"))
		} else {
			filter.CategoryID = &id
		}
	}
	filter.MinAmount = parseAmountParam(query, "min_amount", errs)
	filter.MaxAmount = parseAmountParam(query, "max_amount", errs)
	filter.StartDate = parseDateParam(query, "start_date", errs)
	filter.EndDate = parseDateParam(query, "end_date", errs)

	return filter, errs.ErrOrNil()
}

func parseAmountParam(query url.Values, name string, errs *financeErrors.ValidationErrors) *decimal.Decimal {
	raw := query.Get(name)
	if raw == "" {
		return nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		errs.Add(financeErrors.NewFieldValidationError(name, "must be a number"))
		return nil
	}
	if domain.CheckAmountScale(amount) != nil {
		errs.Add(financeErrors.NewFieldValidationError(name, "too many digits"))
		return nil
	}
	return &amount
}

func parseDateParam(query url.Values, name string, errs *financeErrors.ValidationErrors) *time.Time {
	raw := query.Get(name)
	if raw == "" {
		return nil
	}
	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		errs.Add(financeErrors.NewFieldValidationError(name, "must be a date in YYYY-MM-DD format"))
		return nil
	}
	return &date
}
