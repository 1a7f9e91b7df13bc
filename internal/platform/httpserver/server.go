package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	votinglifecycle "agora/contexts/civic-governance/voting-lifecycle"
	lifecycleerrors "agora/contexts/civic-governance/voting-lifecycle/domain/errors"
	lifecyclehttp "agora/contexts/civic-governance/voting-lifecycle/transport/http"
	accessgate "agora/contexts/identity-access/access-gate"
	gateerrors "agora/contexts/identity-access/access-gate/domain/errors"
	gatehttp "agora/contexts/identity-access/access-gate/transport/http"

	_ "agora/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	gate      accessgate.Module
	lifecycle votinglifecycle.Module
}

func New(
	gate accessgate.Module,
	lifecycle votinglifecycle.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		gate:      gate,
		lifecycle: lifecycle,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/workspaces", s.handleCreateWorkspace)
	s.mux.HandleFunc("GET /v1/workspaces", s.handleListWorkspaces)
	s.mux.HandleFunc("GET /v1/workspaces/{workspace_id}", s.handleGetWorkspace)
	s.mux.HandleFunc("GET /v1/me/capabilities", s.handleCapabilities)

	s.mux.HandleFunc("POST /v1/workspaces/{workspace_id}/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/vote", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/withdraw", s.handleWithdrawProposal)

	s.mux.HandleFunc("GET /v1/voting/sessions/active", s.handleActiveSessions)
	s.mux.HandleFunc("GET /v1/voting/sessions/{session_id}/results", s.handleSessionResults)
	s.mux.HandleFunc("POST /v1/voting/sessions/{session_id}/close", s.handleCloseSession)
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeGateError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req gatehttp.CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGateError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gate.Handler.CreateWorkspaceHandler(r.Context(), userID, req)
	if err != nil {
		writeGateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gate.Handler.ListWorkspacesHandler(r.Context(), requestUserID(r), r.URL.Query().Get("search"))
	if err != nil {
		writeGateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gate.Handler.GetWorkspaceHandler(r.Context(), requestUserID(r), r.PathValue("workspace_id"))
	if err != nil {
		writeGateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gate.Handler.CapabilitiesHandler(r.Context(), requestUserID(r))
	if err != nil {
		writeGateDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req lifecyclehttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CreateProposalHandler(r.Context(), userID, r.PathValue("workspace_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.lifecycle.Handler.ListProposalsHandler(
		r.Context(),
		requestUserID(r),
		query.Get("workspace_id"),
		query.Get("status"),
		query.Get("author_id"),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.GetProposalHandler(r.Context(), requestUserID(r), r.PathValue("proposal_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req lifecyclehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.lifecycle.Handler.CastVoteHandler(r.Context(), userID, r.PathValue("proposal_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleWithdrawProposal(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	req := lifecyclehttp.WithdrawProposalRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeLifecycleError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}
	resp, err := s.lifecycle.Handler.WithdrawProposalHandler(r.Context(), userID, r.PathValue("proposal_id"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.ActiveSessionsHandler(r.Context(), requestUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.lifecycle.Handler.SessionResultsHandler(r.Context(), requestUserID(r), r.PathValue("session_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		writeLifecycleError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.lifecycle.Handler.CloseSessionHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeDomainError maps lifecycle errors first and falls through to the
// access-gate mapping, since lifecycle operations surface gate errors too.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycleerrors.ErrProposalNotFound):
		writeLifecycleError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrSessionNotFound):
		writeLifecycleError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidProposalInput):
		writeLifecycleError(w, http.StatusBadRequest, "invalid_proposal", err.Error())
	case errors.Is(err, lifecycleerrors.ErrProposalNotInVoting):
		writeLifecycleError(w, http.StatusConflict, "proposal_not_in_voting", err.Error())
	case errors.Is(err, lifecycleerrors.ErrProposalTerminal):
		writeLifecycleError(w, http.StatusConflict, "proposal_terminal", err.Error())
	case errors.Is(err, lifecycleerrors.ErrNoOpenSession):
		writeLifecycleError(w, http.StatusConflict, "no_open_session", err.Error())
	case errors.Is(err, lifecycleerrors.ErrVotingNotStarted):
		writeLifecycleError(w, http.StatusConflict, "voting_not_started", err.Error())
	case errors.Is(err, lifecycleerrors.ErrVotingExpired):
		writeLifecycleError(w, http.StatusGone, "voting_expired", err.Error())
	case errors.Is(err, lifecycleerrors.ErrAlreadyVoted):
		writeLifecycleError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, lifecycleerrors.ErrInvalidOption):
		writeLifecycleError(w, http.StatusUnprocessableEntity, "invalid_option", err.Error())
	case errors.Is(err, lifecycleerrors.ErrSessionNotActive):
		writeLifecycleError(w, http.StatusConflict, "session_not_active", err.Error())
	case errors.Is(err, lifecycleerrors.ErrConflict):
		writeLifecycleError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeGateDomainError(w, err)
	}
}

func writeGateDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateerrors.ErrUnauthenticated):
		writeGateError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, gateerrors.ErrUserInactive):
		writeGateError(w, http.StatusForbidden, "user_inactive", err.Error())
	case errors.Is(err, gateerrors.ErrUserNotFound):
		writeGateError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, gateerrors.ErrWorkspaceNotFound):
		writeGateError(w, http.StatusNotFound, "workspace_not_found", err.Error())
	case errors.Is(err, gateerrors.ErrForbidden):
		writeGateError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, gateerrors.ErrInvalidWorkspaceInput):
		writeGateError(w, http.StatusBadRequest, "invalid_workspace", err.Error())
	default:
		writeGateError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLifecycleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, lifecyclehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeGateError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gatehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requestUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
