package server

import "net/http"

// setupRoutes configures the HTTP routes exposing the Intake, Query,
// and Config surfaces (spec §6), plus health/shutdown for the hosting
// process.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Intake
	mux.HandleFunc("/api/intake/url", s.handleIntakeURL)
	mux.HandleFunc("/api/intake/company", s.handleIntakeCompany)
	mux.HandleFunc("/api/sources", s.handleSourcesRoute) // GET (list), POST (submit+scrape)

	// API routes - Query
	mux.HandleFunc("/api/queue-items", s.handleListQueueItems)
	mux.HandleFunc("/api/job-listings", s.handleListJobListings)
	mux.HandleFunc("/api/job-matches", s.handleListJobMatches)
	mux.HandleFunc("/api/stats", s.handleGetStats)

	// API routes - Config
	mux.HandleFunc("/api/config", s.handleConfig) // GET/PUT a single key (?key=...)

	// API routes - System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/shutdown", s.ShutdownHandler)

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleSourcesRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.handleListSources, s.handleSubmitSource)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}
