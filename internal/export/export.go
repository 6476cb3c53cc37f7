// Package export renders expense listings as CSV, JSON or YAML documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

// Row is one exported expense.
type Row struct {
	Date        time.Time
	Category    string
	Description string
	Amount      decimal.Decimal
}

type Encoder interface {
	EncodeRows(rows []Row) ([]byte, error)
	ContentType() string
	Extension() string
}

var Formats = []string{"csv", "json", "yaml"}

// EncoderFor picks the encoder for a format name; "" means csv.
func EncoderFor(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVEncoder{}, nil
	case "json":
		return JSONEncoder{}, nil
	case "yaml", "yml":
		return YAMLEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func RowsFromExpenses(expenses []domain.Expense) []Row {
	rows := make([]Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, Row{
			Date:        e.Date,
			Category:    e.CategoryName,
			Description: e.Description,
			Amount:      e.Amount,
		})
	}
	return rows
}

type flatRow struct {
	Date        string `yaml:"date"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
}

func flatten(r Row) flatRow {
	return flatRow{
		Date:        r.Date.Format(domain.DateLayout),
		Category:    r.Category,
		Description: r.Description,
		Amount:      r.Amount.StringFixed(2),
	}
}
