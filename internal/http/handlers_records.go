package http

import (
	"net/http"
	"strings"

	"glance/internal/amqp"
	applog "glance/internal/log"
)

// readBody parses the request body or writes a 400.
func readBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path)
		BadRequestError("invalid request body").Write(w)
		return nil, false
	}
	return p, true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txs, err := s.reports.Ledger(r.Context(), sanitizeInput(q.Get("q")), sanitizeInput(q.Get("category")))
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(txs).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	e, err := parseExpense(p, s.now())
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}

	m, err := s.records.CreateExpense(r.Context(), e)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordsChanged(amqp.EntityExpense).
		TriggerSuccessNotification("Expense added").
		JSON(m).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	e, err := parseExpense(p, s.now())
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	e.ID = r.PathValue("id")

	m, err := s.records.UpdateExpense(r.Context(), e)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityExpense).
		TriggerSuccessNotification("Expense updated").
		JSON(m).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	snap, err := s.records.RemoveExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityExpense).
		TriggerSuccessNotification("Expense deleted").
		JSON(snap).
		Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.records.Budgets(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	b, err := parseBudget(p)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}

	m, err := s.records.CreateBudget(r.Context(), b)
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordsChanged(amqp.EntityBudget).
		TriggerSuccessNotification("Budget added").
		JSON(m).
		Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	b, err := parseBudget(p)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	b.ID = r.PathValue("id")

	m, err := s.records.UpdateBudget(r.Context(), b)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityBudget).
		TriggerSuccessNotification("Budget updated").
		JSON(m).
		Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	snap, err := s.records.RemoveBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityBudget).
		TriggerSuccessNotification("Budget deleted").
		JSON(snap).
		Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.records.Categories(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, err)
		return
	}
	NewResponse().JSON(categories).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}

	m, err := s.records.CreateCategory(r.Context(), parseCategory(p))
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		TriggerRecordsChanged(amqp.EntityCategory).
		TriggerSuccessNotification("Category added").
		JSON(m).
		Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := readBody(w, r)
	if !ok {
		return
	}
	c := parseCategory(p)
	c.ID = r.PathValue("id")

	m, err := s.records.UpdateCategory(r.Context(), c)
	if err != nil {
		s.fail(w, r, applog.OpUpdate, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityCategory).
		TriggerSuccessNotification("Category updated").
		JSON(m).
		Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	snap, err := s.records.RemoveCategory(r.Context(), id)
	if err != nil {
		s.fail(w, r, applog.OpDelete, err)
		return
	}
	NewResponse().
		TriggerRecordsChanged(amqp.EntityCategory).
		TriggerSuccessNotification("Category deleted").
		JSON(snap).
		Write(w)
}
