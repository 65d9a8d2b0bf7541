// Package server is the SCIM 2.0 HTTP surface of the bridge. It parses the
// inbound protocol, enforces the provisioning bearer token, and delegates all
// semantics to the translator.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/internal/translator"
	"github.com/jakefrancois5/Gitea-SCIM-Provisioning/pkg/scim"
)

const contentTypeSCIM = "application/scim+json"

type Server struct {
	logger     hclog.Logger
	translator *translator.Translator
	authToken  string
	metrics    *Metrics
	router     *mux.Router
}

func New(t *translator.Translator, authToken string, logger hclog.Logger) *Server {
	s := &Server{
		logger:     logger,
		translator: t,
		authToken:  authToken,
		metrics:    NewMetrics(),
	}

	s.routes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})).
		Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/scim/v2").Subrouter()
	api.Use(s.requestIDMiddleware, s.metricsMiddleware, s.authMiddleware)

	api.HandleFunc("/Users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/Users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/Users/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/Users/{id}", s.handlePatchUser).Methods(http.MethodPatch)
	api.HandleFunc("/Users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/Groups", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/Groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/Groups/{id}", s.handleGetGroup).Methods(http.MethodGet)
	api.HandleFunc("/Groups/{id}", s.handleUpdateGroup).Methods(http.MethodPatch, http.MethodPut)

	s.router = router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeSCIM)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, scim.NewError(status, detail))
}
