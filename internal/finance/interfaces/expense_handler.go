package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sebuszqo/HomeBudget/internal/export"
	"github.com/sebuszqo/HomeBudget/internal/finance/domain"
	financeErrors "github.com/sebuszqo/HomeBudget/internal/finance/errors"
	"github.com/sebuszqo/HomeBudget/internal/log"
)

type ExpenseServiceInterface interface {
	CreateExpense(ctx context.Context, userID int64, expense domain.Expense) (*domain.Expense, error)
	GetExpenses(ctx context.Context, userID int64, filter domain.ExpenseFilter) ([]domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID int64) error
}

type SummaryServiceInterface interface {
	GetSummary(ctx context.Context, userID int64) (*domain.Summary, error)
}

type ExpenseHandler struct {
	service        ExpenseServiceInterface
	summaryService SummaryServiceInterface
	respondJSON    jsonResponder
	respondError   errorResponder
}

func NewExpenseHandler(
	service ExpenseServiceInterface,
	summaryService SummaryServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, errors ...[]string),
) *ExpenseHandler {
	if service == nil || summaryService == nil || respondJSON == nil || respondError == nil {
		panic("Services and response functions must not be nil")
	}
	return &ExpenseHandler{
		service:        service,
		summaryService: summaryService,
		respondJSON:    respondJSON,
		respondError:   respondError,
	}
}

type createExpenseRequest struct {
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        string           `json:"date"`
	CategoryID  *int64           `json:"category_id"`
}

func (req createExpenseRequest) toExpense() (domain.Expense, error) {
	errs := &financeErrors.ValidationErrors{}
	if req.Amount == nil {
		errs.Add(financeErrors.NewFieldValidationError("amount", "field required"))
	} else if domain.CheckAmountScale(*req.Amount) != nil {
		errs.Add(financeErrors.NewFieldValidationError("amount", "too many digits"))
	}
	if req.CategoryID == nil {
		errs.Add(financeErrors.NewFieldValidationError("category_id", "field required"))
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			errs.Add(financeErrors.NewFieldValidationError("date", "must be a date in YYYY-MM-DD format"))
		}
		date = parsed
	}
	if err := errs.ErrOrNil(); err != nil {
		return domain.Expense{}, err
	}

	return domain.Expense{
		Description: req.Description,
		Amount:      *req.Amount,
		Date:        date,
		CategoryID:  *req.CategoryID,
	}, nil
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	expense, err := req.toExpense()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.service.CreateExpense(r.Context(), userID, expense)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"data":   toExpenseDTO(*created),
	})
}

func (h *ExpenseHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	filter, err := parseExpenseFilter(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expenses, err := h.service.GetExpenses(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toExpenseDTOs(expenses),
	})
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	expenseID, ok := parsePathID(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid expense ID")
		return
	}

	if err := h.service.DeleteExpense(r.Context(), userID, expenseID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Expense deleted successfully",
	})
}

func (h *ExpenseHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.summaryService.GetSummary(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   toSummaryDTO(summary),
	})
}

// ExportExpenses streams the filtered expenses as a csv, json or yaml attachment.
func (h *ExpenseHandler) ExportExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	encoder, err := export.EncoderFor(query.Get("format"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter, err := parseExpenseFilter(query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expenses, err := h.service.GetExpenses(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := encoder.EncodeRows(export.RowsFromExpenses(expenses))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", encoder.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="expenses.%s"`, encoder.Extension()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		expenseLogger(r).Warn("export write failed", log.FieldOperation, log.OpExport, log.FieldError, err)
		return
	}
	expenseLogger(r).Info("expenses exported", log.FieldOperation, log.OpExport,
		log.FieldUserID, userID, log.FieldCount, len(expenses))
}

func (h *ExpenseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors *financeErrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		h.respondError(w, http.StatusBadRequest, "Invalid request", validationErrors.Messages())
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, financeErrors.ErrInsufficientBalance):
		h.respondError(w, http.StatusBadRequest, financeErrors.ErrInsufficientBalance.Error())
	case errors.Is(err, financeErrors.ErrCategoryNotFound):
		h.respondError(w, http.StatusNotFound, "Category not found or not accessible")
	case errors.Is(err, financeErrors.ErrExpenseNotFound):
		h.respondError(w, http.StatusNotFound, "Expense not found")
	default:
		expenseLogger(r).Error("expense request failed", log.FieldError, err, log.FieldPath, r.URL.Path)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func expenseLogger(r *http.Request) *log.Logger {
	return log.FromContext(r.Context()).WithComponent(log.ComponentExpense)
}
