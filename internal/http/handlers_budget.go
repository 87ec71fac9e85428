package http

import (
	"net/http"

	"ledger/internal/core"
)

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	income, err := p.Float("income")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.SetIncome(r.Context(), month, income); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Data(map[string]any{"month": month, "income": income}).Write(w)
}

func (s *Server) handleGetTargets(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTargets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(targetsView(t)).Write(w)
}

func (s *Server) handleSetTargets(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	var pct [3]float64
	for i, key := range []string{"needs", "wants", "savings"} {
		v, err := p.Float(key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		pct[i] = v
	}
	t, err := s.ledger.SetTargets(r.Context(), pct[0], pct[1], pct[2])
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Data(targetsView(t)).Write(w)
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mapping, err := s.ledger.CategoryMappings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make(map[string]string, len(mapping))
	for c, m := range mapping {
		out[c] = string(m)
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleMapCategory(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.PathValue("category"))
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	meta := p.Get("meta")
	if err := s.ledger.MapCategory(r.Context(), category, meta); err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Data(map[string]string{"category": category, "meta": meta}).Write(w)
}

func (s *Server) handleUnmapCategory(w http.ResponseWriter, r *http.Request) {
	removed, err := s.ledger.UnmapCategory(r.Context(), sanitizeInput(r.PathValue("category")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if removed {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"deleted": removed}).Write(w)
}

func (s *Server) handleListPayroll(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ListPayroll(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]payrollView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newPayrollView(e))
	}
	NewJSONResponse().Data(out).Write(w)
}

func (s *Server) handleCreatePayroll(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	entry, err := s.ledger.AddPayrollEntry(r.Context(), core.PayrollInput{
		PayDate: p.Get("pay_date"),
		Gross:   p.Get("gross"),
		Tax:     p.Get("tax"),
		K401:    p.Get("k401"),
		HSA:     p.Get("hsa"),
		ESPP:    p.Get("espp"),
		Other:   p.Get("other"),
		Notes:   p.Get("notes"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Data(newPayrollView(entry)).Write(w)
}

func (s *Server) handleDeletePayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	deleted, err := s.ledger.DeletePayrollEntry(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"deleted": deleted}).Write(w)
}
