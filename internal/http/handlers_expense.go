package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
)

// handleCreateExpense records a new expense from the entry form.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Parse form error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	dateStr := strings.TrimSpace(r.Form.Get("date"))
	category := core.CanonicalCategory(sanitizeInput(r.Form.Get("category")))
	desc := sanitizeInput(r.Form.Get("description"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))

	date, err := parseDate(dateStr)
	if err != nil {
		UnprocessableEntityError("Invalid date, expected YYYY-MM-DD").Write(w)
		return
	}

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	rec := core.Record{
		Date:        date,
		Category:    category,
		Description: desc,
		Amount:      core.Money{Cents: cents},
	}
	if err := rec.Validate(); err != nil {
		UnprocessableEntityError(validationMessage(err)).Write(w)
		return
	}

	id, err := s.store.Add(ctx, rec)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Expense add error",
			log.FieldError, err,
			"category", rec.Category,
			"amount_cents", rec.Amount.Cents)
		InternalServerError("Could not save expense").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerExpenseCreated(id).
		TriggerFormReset().
		BodyHTML(`<div class="success">Recorded ` +
			template.HTMLEscapeString(rec.Description) +
			` for ` + formatEuros(rec.Amount.Cents) +
			` (` + template.HTMLEscapeString(rec.Category) + `)</div>`).
		Write(w)
}

// handleDeleteExpense removes a single expense by ID. Unknown IDs leave
// the ledger untouched and report 404.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		MethodNotAllowedError("POST, DELETE").Write(w)
		return
	}
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id, err := parseID(r.Form.Get("id"))
	if err != nil {
		BadRequestError("Invalid expense id").Write(w)
		return
	}

	ok, err := s.store.Remove(ctx, id)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Expense delete error", log.FieldError, err, "id", id)
		InternalServerError("Could not delete expense").Write(w)
		return
	}
	if !ok {
		NotFoundError("No such expense").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerExpenseDeleted(id).
		BodyHTML(`<div class="success">Deleted expense</div>`).
		Write(w)
}

// handleClearLedger deletes every expense.
func (s *Server) handleClearLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	ctx := r.Context()

	if err := s.store.Clear(ctx); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Ledger clear error", log.FieldError, err)
		InternalServerError("Could not clear ledger").Write(w)
		return
	}

	s.invalidateViews()

	NewHTMXResponse().
		TriggerLedgerCleared().
		BodyHTML(`<div class="success">Ledger cleared</div>`).
		Write(w)
}

// validationMessage maps domain validation errors to user-facing text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Invalid date"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amount must be greater than zero"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category is required"
	case errors.Is(err, core.ErrInvalidCategory):
		return "Category must contain only letters"
	case errors.Is(err, core.ErrShortDescription):
		return "Description must be at least 5 characters"
	case errors.Is(err, core.ErrLongDescription):
		return "Description is too long"
	default:
		return "Invalid expense data"
	}
}
