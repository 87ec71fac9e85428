package http

import (
	"net/http"

	"ledger/internal/core"
)

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	views, err := s.ledger.ListBuckets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(newBucketViews(views)).Write(w)
}

// writeBucket responds with the bucket plus its current meta and progress.
func (s *Server) writeBucket(w http.ResponseWriter, r *http.Request, status int, b core.Bucket) {
	mapping, err := s.ledger.CategoryMappings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := core.ViewBuckets([]core.Bucket{b}, mapping)[0]
	NewJSONResponse().Status(status).Data(newBucketView(view)).Write(w)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	goal, err := p.Float("goal")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.ledger.CreateBucket(r.Context(), p.Get("name"), p.Get("category"), goal, p.Get("meta"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.writeBucket(w, r, http.StatusCreated, b)
}

func (s *Server) handleEditBucket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	goal, err := p.Float("goal")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.ledger.EditBucket(r.Context(), id, p.Get("name"), p.Get("category"), goal, p.Get("meta"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.writeBucket(w, r, http.StatusOK, b)
}

func (s *Server) handleContributeBucket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	amount, err := p.Float("amount")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.ledger.ContributeBucket(r.Context(), id, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.writeBucket(w, r, http.StatusOK, b)
}

func (s *Server) handleSpendBucket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	b, err := s.ledger.SpendBucket(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.invalidate()
	s.writeBucket(w, r, http.StatusOK, b)
}

func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, malformed("id", errInvalidID))
		return
	}
	deleted, err := s.ledger.DeleteBucket(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted {
		s.invalidate()
	}
	NewJSONResponse().Data(map[string]bool{"deleted": deleted}).Write(w)
}
