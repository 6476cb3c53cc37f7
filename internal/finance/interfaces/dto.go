package interfaces

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
)

type categoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type expenseDTO struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Category    categoryDTO `json:"category"`
}

type categoryTotalDTO struct {
	Category string      `json:"category"`
	Total    json.Number `json:"total"`
}

type summaryDTO struct {
	TotalSpent       json.Number        `json:"total_spent"`
	RemainingBalance json.Number        `json:"remaining_balance"`
	ByCategory       []categoryTotalDTO `json:"by_category"`
	SpentLastMonth   json.Number        `json:"spent_last_month"`
	SpentLastQuarter json.Number        `json:"spent_last_quarter"`
	SpentLastYear    json.Number        `json:"spent_last_year"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toCategoryDTO(c domain.Category) categoryDTO {
	return categoryDTO{ID: c.ID, Name: c.Name}
}

func toCategoryDTOs(categories []domain.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	return out
}

func toExpenseDTO(e domain.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Description: e.Description,
		Amount:      money(e.Amount),
		Date:        e.Date.Format(domain.DateLayout),
		Category:    categoryDTO{ID: e.CategoryID, Name: e.CategoryName},
	}
}

func toExpenseDTOs(expenses []domain.Expense) []expenseDTO {
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	return out
}

func toSummaryDTO(s *domain.Summary) summaryDTO {
	byCategory := make([]categoryTotalDTO, 0, len(s.ByCategory))
	for _, total := range s.ByCategory {
		byCategory = append(byCategory, categoryTotalDTO{Category: total.Category, Total: money(total.Total)})
	}
	return summaryDTO{
		TotalSpent:       money(s.TotalSpent),
		RemainingBalance: money(s.RemainingBalance),
		ByCategory:       byCategory,
		SpentLastMonth:   money(s.SpentLastMonth),
		SpentLastQuarter: money(s.SpentLastQuarter),
		SpentLastYear:    money(s.SpentLastYear),
	}
}
