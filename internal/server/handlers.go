package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ternarybob/jobpipeline/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleIntakeURL implements Intake API's SubmitJobUrl.
func (s *Server) handleIntakeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.app.Intake.SubmitURL(r.Context(), body.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"queueItemId": id})
}

// handleIntakeCompany implements Intake API's SubmitCompany.
func (s *Server) handleIntakeCompany(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.app.Intake.SubmitCompany(r.Context(), body.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"queueItemId": id})
}

// handleListSources lists currently-enabled JobSources.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.app.Storage.Sources().ListEnabled(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

// handleSubmitSource implements Intake API's SubmitSource/TriggerScrape:
// persists a new JobSource (or triggers an existing one if id is given)
// and enqueues its first scrape.
func (s *Server) handleSubmitSource(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID                  string          `json:"id"`
		Name                string          `json:"name"`
		URL                 string          `json:"url"`
		Kind                models.SourceKind `json:"kind"`
		PollIntervalSeconds int             `json:"pollIntervalSeconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var source *models.JobSource
	if body.ID != "" {
		existing, err := s.app.Storage.Sources().Get(r.Context(), body.ID)
		if err != nil || existing == nil {
			writeError(w, http.StatusNotFound, "source not found")
			return
		}
		source = existing
	} else {
		if body.Kind == "" {
			body.Kind = models.SourceKindHTML
		}
		source = models.NewJobSource(body.Name, body.URL, body.Kind, body.PollIntervalSeconds)
		if err := s.app.Storage.Sources().Save(r.Context(), source); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	id, err := s.app.Intake.TriggerScrape(r.Context(), source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"sourceId": source.ID, "queueItemId": id})
}

// handleListQueueItems implements the Query surface's ListQueueItems,
// scoped to one lineage at a time since QueueStore exposes lineage
// lookups (ListByRoot/ListChildren) rather than an arbitrary filter.
func (s *Server) handleListQueueItems(w http.ResponseWriter, r *http.Request) {
	rootID := r.URL.Query().Get("root_id")
	if rootID == "" {
		writeError(w, http.StatusBadRequest, "root_id query parameter is required")
		return
	}
	items, err := s.app.Storage.Queue().ListByRoot(r.Context(), rootID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func parsePaging(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func (s *Server) handleListJobListings(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	listings, err := s.app.Storage.Listings().List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleListJobMatches(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	priority := models.MatchPriority(r.URL.Query().Get("priority"))
	if priority == "" {
		priority = models.PriorityHigh
	}
	matches, err := s.app.Storage.Matches().ListByPriority(r.Context(), priority, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

var queryableStatuses = []models.ItemStatus{
	models.StatusPending,
	models.StatusClaimed,
	models.StatusProcessing,
	models.StatusSuccess,
	models.StatusFailed,
	models.StatusSkipped,
	models.StatusFiltered,
	models.StatusBlocked,
}

// handleGetStats implements the Query surface's GetStats as a count of
// QueueItems per status.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int, len(queryableStatuses))
	for _, status := range queryableStatuses {
		count, err := s.app.Storage.Queue().CountByStatus(r.Context(), status)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		counts[string(status)] = count
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"queueItemsByStatus": counts})
}

// handleConfig implements the Config surface's GetConfig/SetConfig.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: s.handleGetConfig,
		http.MethodPut: s.handleSetConfig,
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key query parameter is required")
		return
	}
	value := s.app.Registry.GetString(r.Context(), key, "")
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key       string `json:"key"`
		Value     string `json:"value"`
		UpdatedBy string `json:"updatedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UpdatedBy == "" {
		body.UpdatedBy = "api"
	}
	if err := s.app.Registry.Set(r.Context(), body.Key, body.Value, body.UpdatedBy); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": body.Key, "value": body.Value})
}

// handleHealth reports worker liveness via the pending-item backlog,
// the CLI/health surface's "health returns worker liveness" contract.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pending, err := s.app.Storage.Queue().CountByStatus(r.Context(), models.StatusPending)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"pending": pending,
	})
}
