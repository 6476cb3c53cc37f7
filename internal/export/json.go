package export

import "encoding/json"

type jsonRow struct {
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
}

type JSONEncoder struct{}

func (JSONEncoder) ContentType() string { return "application/json" }

func (JSONEncoder) Extension() string { return "json" }

func (JSONEncoder) EncodeRows(rows []Row) ([]byte, error) {
	out := make([]jsonRow, 0, len(rows))
	for _, r := range rows {
		f := flatten(r)
		out = append(out, jsonRow{
			Date:        f.Date,
			Category:    f.Category,
			Description: f.Description,
			Amount:      json.Number(f.Amount),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
