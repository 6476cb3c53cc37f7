package export

import (
	"bytes"
	"encoding/csv"
)

var csvHeader = []string{"date", "category", "description", "amount"}

type CSVEncoder struct{}

func (CSVEncoder) ContentType() string { return "text/csv" }

func (CSVEncoder) Extension() string { return "csv" }

func (CSVEncoder) EncodeRows(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		f := flatten(r)
		if err := w.Write([]string{f.Date, f.Category, f.Description, f.Amount}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
