package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/programme-lv/ojuzman/api"
	"github.com/programme-lv/ojuzman/internal"
	"github.com/programme-lv/ojuzman/internal/gatherer/respbuilder"
	"github.com/programme-lv/ojuzman/internal/ojuz"
	"github.com/programme-lv/ojuzman/internal/pool"
	"github.com/programme-lv/ojuzman/internal/submitter"
)

const maxRequestBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status    string   `json:"status"`
	Accounts  int      `json:"accounts"`
	Usernames []string `json:"usernames"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write response", tint.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

// errorStatus maps pool and session errors onto HTTP codes.
func errorStatus(err error) int {
	var te *ojuz.TransportError
	var pe *ojuz.ProtocolError
	switch {
	case errors.Is(err, submitter.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, pool.ErrNotInitialized), errors.Is(err, pool.ErrNoUsableAccounts):
		return http.StatusServiceUnavailable
	case errors.Is(err, ojuz.ErrSoftBlocked):
		return http.StatusTooManyRequests
	case errors.As(err, &te), errors.As(err, &pe), errors.Is(err, ojuz.ErrNotLoggedIn):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitReq
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("malformed submit request"))
		return
	}
	if req.Uuid == "" {
		req.Uuid = uuid.NewString()
	}

	b := respbuilder.New(req.Uuid)
	err := s.proc.Process(r.Context(), req, b)

	status := http.StatusAccepted
	if err != nil {
		status = errorStatus(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
	}
	s.writeJSON(w, status, b.Response())
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.pool.QueryVerdict(r.Context(), id)
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, internal.APIVerdict(v))
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	html, err := s.pool.VerdictDetails(r.Context(), id)
	if err != nil {
		s.writeError(w, errorStatus(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, html)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n := s.pool.Size()
	body := healthBody{Status: "ok", Accounts: n, Usernames: s.pool.Usernames()}
	if n == 0 {
		body.Status = "no accounts"
		s.writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	s.writeJSON(w, http.StatusOK, body)
}
