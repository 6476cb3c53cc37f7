package interfaces

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
)

func newTestExpenseHandler(expenses *MockExpenseService, summaries *MockSummaryService) *ExpenseHandler {
	if summaries == nil {
		summaries = &MockSummaryService{}
	}
	return NewExpenseHandler(expenses, summaries, respondJSON, respondError)
}

func sampleExpenses() []domain.Expense {
	return []domain.Expense{
		{ID: 2, Description: "Lunch, with team", Amount: decimal.RequireFromString("12.5"), Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), CategoryID: 1, CategoryName: "food"},
		{ID: 1, Description: "Fuel", Amount: decimal.RequireFromString("40"), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CategoryID: 2, CategoryName: "car"},
	}
}

func TestCreateExpense_Success(t *testing.T) {
	body := `{"description":"Lunch","amount":12.345,"date":"2024-03-02","category_id":1}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/expenses/", strings.NewReader(body)), 7)
	w := httptest.NewRecorder()

	mockService := &MockExpenseService{}
	newTestExpenseHandler(mockService, nil).CreateExpense(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t,
		`{"id":1,"description":"Lunch","amount":12.35,"date":"2024-03-02","category":{"id":1,"name":"food"}}`,
		string(decodeEnvelope(t, w.Body.Bytes()).Data))
	assert.Equal(t, int64(1), mockService.lastInput.CategoryID)
	assert.Equal(t, "2024-03-02", mockService.lastInput.Date.Format(domain.DateLayout))
}

func TestCreateExpense_OmittedDateIsLeftToService(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodPost, "/expenses/", strings.NewReader(`{"amount":"5","category_id":1}`)), 7)
	w := httptest.NewRecorder()

	mockService := &MockExpenseService{}
	newTestExpenseHandler(mockService, nil).CreateExpense(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockService.lastInput.Date.IsZero())
}

func TestCreateExpense_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createErr      error
		shouldFail     bool
		expectedStatus int
		expectedMsg    string
		expectedErrors []string
	}{
		{
			name:           "missing required fields",
			body:           `{"description":"x"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
			expectedErrors: []string{"amount: field required", "category_id: field required"},
		},
		{
			name:           "bad date",
			body:           `{"amount":1,"category_id":1,"date":"02/03/2024"}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
			expectedErrors: []string{"date: must be a date in YYYY-MM-DD format"},
		},
		{
			name:           "malformed json",
			body:           `{"amount":`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request body",
		},
		{
			name:           "amount with tiny exponent",
			body:           `{"amount":1e-20000000,"category_id":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
			expectedErrors: []string{"amount: too many digits"},
		},
		{
			name:           "amount with huge exponent",
			body:           `{"amount":"1e400","category_id":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request",
			expectedErrors: []string{"amount: too many digits"},
		},
		{
			name:           "insufficient balance",
			body:           `{"amount":1500,"category_id":1}`,
			createErr:      financeErrors.ErrInsufficientBalance,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Insufficient balance",
		},
		{
			name:           "negative amount",
			body:           `{"amount":-1,"category_id":1}`,
			createErr:      financeErrors.NewValidationError("Amount must not be negative"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Amount must not be negative",
		},
		{
			name:           "foreign category",
			body:           `{"amount":1,"category_id":99}`,
			createErr:      financeErrors.ErrCategoryNotFound,
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Category not found or not accessible",
		},
		{
			name:           "service failure",
			body:           `{"amount":1,"category_id":1}`,
			shouldFail:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/expenses/", strings.NewReader(tt.body)), 7)
			w := httptest.NewRecorder()

			mockService := &MockExpenseService{createErr: tt.createErr, shouldFail: tt.shouldFail}
			newTestExpenseHandler(mockService, nil).CreateExpense(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			env := decodeEnvelope(t, w.Body.Bytes())
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, tt.expectedMsg, env.Message)
			assert.Equal(t, tt.expectedErrors, env.Errors)
		})
	}
}

func TestCreateExpense_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/expenses/", strings.NewReader(`{"amount":1,"category_id":1}`))
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, nil).CreateExpense(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetExpenses_ParsesFilters(t *testing.T) {
	target := "/expenses/?category_id=2&min_amount=10&max_amount=50.5&start_date=2024-01-01&end_date=2024-03-31"
	req := asUser(httptest.NewRequest(http.MethodGet, target, nil), 7)
	w := httptest.NewRecorder()

	mockService := &MockExpenseService{expenses: sampleExpenses()}
	newTestExpenseHandler(mockService, nil).GetExpenses(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	filter := mockService.lastFilter
	require.NotNil(t, filter.CategoryID)
	assert.Equal(t, int64(2), *filter.CategoryID)
	require.NotNil(t, filter.MinAmount)
	assert.Equal(t, "10.00", filter.MinAmount.StringFixed(2))
	require.NotNil(t, filter.MaxAmount)
	assert.Equal(t, "50.50", filter.MaxAmount.StringFixed(2))
	require.NotNil(t, filter.StartDate)
	assert.Equal(t, "2024-01-01", filter.StartDate.Format(domain.DateLayout))
	require.NotNil(t, filter.EndDate)
	assert.Equal(t, "2024-03-31", filter.EndDate.Format(domain.DateLayout))

	var expenses []expenseDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &expenses))
	require.Len(t, expenses, 2)
	assert.Equal(t, json.Number("12.50"), expenses[0].Amount)
	assert.Equal(t, categoryDTO{ID: 1, Name: "food"}, expenses[0].Category)
}

func TestGetExpenses_NoFiltersLeavesFilterEmpty(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/", nil), 7)
	w := httptest.NewRecorder()

	mockService := &MockExpenseService{}
	newTestExpenseHandler(mockService, nil).GetExpenses(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ExpenseFilter{}, mockService.lastFilter)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w.Body.Bytes()).Data))
}

func TestGetExpenses_MalformedFilters(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/?category_id=x&min_amount=abc&start_date=2024-13-01", nil), 7)
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, nil).GetExpenses(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w.Body.Bytes())
	assert.Equal(t, []string{
		"category_id: must be an integer",
		"min_amount: must be a number",
		"start_date: must be a date in YYYY-MM-DD format",
	}, env.Errors)
}

func TestGetExpenses_AmountFilterExponentOutOfRange(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/?min_amount=1e-999999&max_amount=5e30", nil), 7)
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, nil).GetExpenses(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{
		"min_amount: too many digits",
		"max_amount: too many digits",
	}, decodeEnvelope(t, w.Body.Bytes()).Errors)
}

func TestDeleteExpense(t *testing.T) {
	tests := []struct {
		name           string
		pathID         string
		deleteErr      error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "own expense", pathID: "3", expectedStatus: http.StatusOK, expectedMsg: "Expense deleted successfully"},
		{name: "missing or foreign", pathID: "3", deleteErr: financeErrors.ErrExpenseNotFound, expectedStatus: http.StatusNotFound, expectedMsg: "Expense not found"},
		{name: "invalid id", pathID: "-3", expectedStatus: http.StatusBadRequest, expectedMsg: "Invalid expense ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodDelete, "/expenses/"+tt.pathID, nil), 7)
			req.SetPathValue("id", tt.pathID)
			w := httptest.NewRecorder()

			newTestExpenseHandler(&MockExpenseService{deleteErr: tt.deleteErr}, nil).DeleteExpense(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedMsg, decodeEnvelope(t, w.Body.Bytes()).Message)
		})
	}
}

func TestGetSummary(t *testing.T) {
	summaries := &MockSummaryService{summary: &domain.Summary{
		TotalSpent:       decimal.RequireFromString("150"),
		RemainingBalance: decimal.RequireFromString("850"),
		ByCategory: []domain.CategoryTotal{
			{Category: "books", Total: decimal.RequireFromString("70")},
			{Category: "food", Total: decimal.RequireFromString("80")},
		},
		SpentLastMonth:   decimal.RequireFromString("30"),
		SpentLastQuarter: decimal.RequireFromString("100"),
		SpentLastYear:    decimal.RequireFromString("100"),
	}}
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/summary", nil), 7)
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, summaries).GetSummary(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"total_spent": 150.00,
		"remaining_balance": 850.00,
		"by_category": [{"category":"books","total":70.00},{"category":"food","total":80.00}],
		"spent_last_month": 30.00,
		"spent_last_quarter": 100.00,
		"spent_last_year": 100.00
	}`, string(decodeEnvelope(t, w.Body.Bytes()).Data))
}

func TestGetSummary_ServiceFailure(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/summary", nil), 7)
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, &MockSummaryService{shouldFail: true}).GetSummary(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestExportExpenses(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		filename    string
		contains    string
	}{
		{format: "", contentType: "text/csv", filename: "expenses.csv", contains: `2024-03-02,food,"Lunch, with team",12.50`},
		{format: "json", contentType: "application/json", filename: "expenses.json", contains: `"amount": 40.00`},
		{format: "yaml", contentType: "application/yaml", filename: "expenses.yaml", contains: "category: car"},
	}

	for _, tt := range tests {
		t.Run("format="+tt.format, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/export?format="+tt.format, nil), 7)
			w := httptest.NewRecorder()

			newTestExpenseHandler(&MockExpenseService{expenses: sampleExpenses()}, nil).ExportExpenses(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, w.Header().Get("Content-Disposition"))
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestExportExpenses_UnsupportedFormat(t *testing.T) {
	req := asUser(httptest.NewRequest(http.MethodGet, "/expenses/export?format=xlsx", nil), 7)
	w := httptest.NewRecorder()

	newTestExpenseHandler(&MockExpenseService{}, nil).ExportExpenses(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w.Body.Bytes()).Message, `unsupported export format "xlsx"`)
}
