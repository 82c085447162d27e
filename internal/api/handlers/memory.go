package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arbiter-ai/arbiter/internal/domain"
)

// MemoryHandler exposes read access to the Domain Memory Store.
type MemoryHandler struct {
	store domain.MemoryStore
}

func NewMemoryHandler(store domain.MemoryStore) *MemoryHandler {
	return &MemoryHandler{store: store}
}

type reputationResponse struct {
	Domain      string  `json:"domain"`
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	SampleCount int     `json:"sample_count"`
	LastSeen    int64   `json:"last_seen"`
}

func (h *MemoryHandler) Reputation(w http.ResponseWriter, r *http.Request) {
	dom := chi.URLParam(r, "domain")
	if dom == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	rep, err := h.store.Reputation(r.Context(), dom, nowUnix())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute reputation")
		return
	}

	writeJSON(w, http.StatusOK, reputationResponse{
		Domain:      rep.Domain,
		Score:       rep.Score,
		Label:       string(rep.Label),
		SampleCount: rep.SampleCount,
		LastSeen:    rep.LastSeen,
	})
}

type knowledgeEntryResponse struct {
	Domain       string         `json:"domain"`
	Outcome      string         `json:"outcome"`
	MatchedRules []string       `json:"matched_rules,omitempty"`
	Timestamp    int64          `json:"timestamp"`
	Meta         map[string]any `json:"meta,omitempty"`
}

func (h *MemoryHandler) Query(w http.ResponseWriter, r *http.Request) {
	dom := chi.URLParam(r, "domain")
	if dom == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	var since *int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid since")
			return
		}
		since = &v
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.store.Query(r.Context(), dom, since, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query memory")
		return
	}

	out := make([]knowledgeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, knowledgeEntryResponse{
			Domain: e.Domain, Outcome: string(e.Outcome),
			MatchedRules: e.MatchedRules, Timestamp: e.Timestamp, Meta: e.Meta,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out, "count": len(out)})
}

type statsResponse struct {
	TotalEntries    int64 `json:"total_entries"`
	DistinctDomains int   `json:"distinct_domains"`
	OldestTimestamp int64 `json:"oldest_timestamp"`
	NewestTimestamp int64 `json:"newest_timestamp"`
}

func (h *MemoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalEntries:    stats.TotalEntries,
		DistinctDomains: stats.DistinctDomains,
		OldestTimestamp: stats.OldestTimestamp,
		NewestTimestamp: stats.NewestTimestamp,
	})
}
