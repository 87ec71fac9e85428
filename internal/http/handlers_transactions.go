package http

import (
	"context"
	"net/http"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
)

// monthParam returns ?month when present, else the current month.
func (s *Server) monthParam(r *http.Request) string {
	if m := strings.TrimSpace(r.URL.Query().Get("month")); m != "" {
		return m
	}
	return core.CurrentMonth(s.now())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := core.MonthOrCurrent(strings.TrimSpace(r.URL.Query().Get("month")), s.now())

	summary, err := s.summaries.Get(r.Context(), month, func(ctx context.Context) (core.MonthlySummary, error) {
		log.FromContext(ctx).DebugContext(ctx, "Summary cache miss", log.FieldMonth, month)
		return s.ledger.ComputeMonthlySummary(ctx, month)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newSummaryView(summary)).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context(), s.monthParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newTransactionViews(txs)).Write(w)
}

// handleSearchTransactions filters on ?description, ?category and ?amount.
// The criteria are OR-ed unless ?match=all.
func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := core.TransactionFilter{
		Description: sanitizeInput(q.Get("description")),
		Category:    sanitizeInput(q.Get("category")),
		MatchAll:    strings.EqualFold(strings.TrimSpace(q.Get("match")), "all"),
	}
	if raw := strings.TrimSpace(q.Get("amount")); raw != "" {
		amount, err := core.ParseAmount(raw)
		if err != nil {
			writeError(w, r, core.Invalid("amount", err))
			return
		}
		f.Amount = &amount
	}

	txs, err := s.ledger.SearchTransactions(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newTransactionViews(txs)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Float("amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, hasDate, err := p.Time("date")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var tx core.Transaction
	if hasDate {
		tx, err = s.ledger.AddTransactionAt(r.Context(), date, p.Get("category"), amount, p.Get("description"))
	} else {
		tx, err = s.ledger.AddTransaction(r.Context(), p.Get("category"), amount, p.Get("description"))
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Data(newTransactionView(tx)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	tx, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newTransactionView(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	deleted, err := s.ledger.DeleteTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"deleted": deleted}).Write(w)
}
