package http

import (
	"net/http"
	"strconv"

	"moneta/internal/core"
	"moneta/internal/log"
	"moneta/internal/store"
)

// stateResponse is the full state plus the revision it was read at.
type stateResponse struct {
	store.State
	Revision uint64 `json:"revision"`
}

type summaryResponse struct {
	core.Summary
	Revision uint64 `json:"revision"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, rev := s.store.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{State: st, Revision: rev})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	st, rev := s.store.Snapshot()
	key := s.store.Key() + ":" + strconv.FormatUint(rev, 10)
	summary, hit := s.summaryCache.GetOrCompute(key, func() core.Summary {
		return s.store.SummaryOf(r.Context(), st)
	})
	log.FromContext(r.Context()).DebugContext(r.Context(), "Summary served",
		log.FieldRevision, rev,
		"cache_hit", hit)
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary, Revision: rev})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var in store.TransactionInput
	if !s.decode(w, r, maxBodyBytes, &in) {
		return
	}
	writeResult(w, s.store.AddTransaction(r.Context(), in), http.StatusCreated)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	var in store.TransactionInput
	if !s.decode(w, r, maxBodyBytes, &in) {
		return
	}
	// the path wins over any id in the body
	in.ID = pathID(r)
	writeResult(w, s.store.EditTransaction(r.Context(), in), http.StatusOK)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.store.DeleteTransaction(r.Context(), pathID(r)), http.StatusOK)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in store.CategoryInput
	if !s.decode(w, r, maxBodyBytes, &in) {
		return
	}
	writeResult(w, s.store.AddCategory(r.Context(), in), http.StatusCreated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.store.DeleteCategory(r.Context(), pathID(r)), http.StatusOK)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var p store.ImportPayload
	if !s.decode(w, r, maxImportBytes, &p) {
		return
	}
	writeResult(w, s.store.ImportData(r.Context(), p), http.StatusOK)
}

func (s *Server) handleLoadDemo(w http.ResponseWriter, r *http.Request) {
	res := s.store.LoadDemoData(r.Context())
	writeResult(w, countResult(res, "loaded"), http.StatusOK)
}

func (s *Server) handleClearDemo(w http.ResponseWriter, r *http.Request) {
	res := s.store.ClearDemoData(r.Context())
	writeResult(w, countResult(res, "removed"), http.StatusOK)
}

func (s *Server) handleToggleDisplayMode(w http.ResponseWriter, r *http.Request) {
	res := s.store.ToggleDisplayMode(r.Context())
	out := store.Result[map[string]core.DisplayMode]{Outcome: res.Outcome, Reason: res.Reason}
	if res.OK() {
		out.Value = map[string]core.DisplayMode{"displayMode": res.Value}
	}
	writeResult(w, out, http.StatusOK)
}

// decode parses the body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	if err := decodeJSON(w, r, limit, v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Bad request body", log.FieldError, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// countResult wraps a transaction count as {"<field>": n}.
func countResult(res store.Result[int], field string) store.Result[map[string]int] {
	out := store.Result[map[string]int]{Outcome: res.Outcome, Reason: res.Reason}
	if res.OK() {
		out.Value = map[string]int{field: res.Value}
	}
	return out
}
