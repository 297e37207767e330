package http

import (
	"encoding/json"
	"net/http"

	"moneta/internal/store"
)

// outcomeBody is sent for mutations that were not applied.
type outcomeBody struct {
	Outcome store.Outcome `json:"outcome"`
	Reason  string        `json:"reason,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// headers are already sent; an encode failure cannot be reported
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeResult maps a mutation result onto a response: Applied sends the
// value with successStatus, NoOp sends 200 with the reason and Rejected
// sends 422.
func writeResult[T any](w http.ResponseWriter, res store.Result[T], successStatus int) {
	switch res.Outcome {
	case store.Applied:
		writeJSON(w, successStatus, res.Value)
	case store.NoOp:
		writeJSON(w, http.StatusOK, newOutcomeBody(res.Outcome, res.Reason))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, newOutcomeBody(res.Outcome, res.Reason))
	}
}

func newOutcomeBody(o store.Outcome, reason error) outcomeBody {
	body := outcomeBody{Outcome: o}
	if reason != nil {
		body.Reason = reason.Error()
	}
	return body
}
