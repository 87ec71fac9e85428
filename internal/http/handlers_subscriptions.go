package http

import (
	"net/http"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.ledger.ListSubscriptions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newSubscriptionViews(subs)).Write(w)
}

// subscriptionFields reads the editable subscription fields.
func subscriptionFields(p *RequestBodyParser) (name, category string, amount float64, day int, err error) {
	if amount, err = p.Float("amount"); err != nil {
		return
	}
	if day, err = p.Int("day_of_month"); err != nil {
		return
	}
	return p.Get("name"), p.Get("category"), amount, day, nil
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	name, category, amount, day, err := subscriptionFields(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.ledger.AddSubscription(r.Context(), name, category, amount, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Status(http.StatusCreated).Data(subscriptionView(sub)).Write(w)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	name, category, amount, day, err := subscriptionFields(p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	sub, err := s.ledger.UpdateSubscription(r.Context(), id, name, category, amount, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	NewJSONResponse().Data(subscriptionView(sub)).Write(w)
}

func (s *Server) handleToggleSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	toggled, err := s.ledger.ToggleSubscription(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if toggled {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"toggled": toggled}).Write(w)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	deleted, err := s.ledger.DeleteSubscription(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"deleted": deleted}).Write(w)
}

// handleApplySubscriptions materializes active subscriptions for the month
// given in the body or query, defaulting to the current month.
func (s *Server) handleApplySubscriptions(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	month := p.Get("month")
	if month == "" {
		month = s.monthParam(r)
	}

	applied, err := s.ledger.ApplySubscriptions(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if applied > 0 {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]any{"month": month, "applied": applied}).Write(w)
}
