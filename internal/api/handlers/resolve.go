package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arbiter-ai/arbiter/internal/aaf"
	"github.com/arbiter-ai/arbiter/internal/api/middleware"
	"github.com/arbiter-ai/arbiter/internal/domain"
	"github.com/arbiter-ai/arbiter/internal/normalizer"
	"github.com/arbiter-ai/arbiter/internal/resolver"
)

// ResolveHandler serves POST /v1/resolve: it runs the full Evidence
// Normalizer -> Extension Solver -> Resolver pipeline for one request and
// records the verdict back into the Domain Memory Store.
type ResolveHandler struct {
	pattern    domain.PatternDetector
	policy     domain.PolicyEvaluator
	normalizer *normalizer.Normalizer
	solver     *aaf.Solver
	resolver   *resolver.Resolver
	memory     domain.MemoryStore
	logger     *zap.Logger
}

// NewResolveHandler wires the full pipeline.
func NewResolveHandler(
	pattern domain.PatternDetector,
	policy domain.PolicyEvaluator,
	n *normalizer.Normalizer,
	s *aaf.Solver,
	r *resolver.Resolver,
	memory domain.MemoryStore,
	logger *zap.Logger,
) *ResolveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolveHandler{
		pattern: pattern, policy: policy, normalizer: n,
		solver: s, resolver: r, memory: memory, logger: logger,
	}
}

type resolveRequest struct {
	Domain   string         `json:"domain"`
	Pack     string         `json:"pack"`
	Text     string         `json:"text"`
	Features map[string]any `json:"features,omitempty"`
}

type extensionResponse struct {
	Args     []string `json:"args"`
	Rejected []string `json:"rejected"`
}

type defeatResponse struct {
	DefeatedID string `json:"defeated_id"`
	WinnerID   string `json:"winner_id"`
}

type explanationResponse struct {
	ArgumentID string   `json:"argument_id"`
	Claim      string   `json:"claim"`
	Defeats    []string `json:"defeats,omitempty"`
}

type resolveResponse struct {
	RequestID          string                `json:"request_id,omitempty"`
	Verdict            domain.Verdict        `json:"verdict"`
	RiskScore          float64               `json:"risk_score"`
	ChosenExtension    extensionResponse     `json:"chosen_extension"`
	Grounded           extensionResponse     `json:"grounded"`
	Preferred          []extensionResponse   `json:"preferred,omitempty"`
	Stable             []extensionResponse   `json:"stable,omitempty"`
	DefeatedMap        []defeatResponse      `json:"defeated_map,omitempty"`
	Explanation        []explanationResponse `json:"explanation"`
	TimeBudgetExceeded bool                  `json:"time_budget_exceeded"`
	Substitutions      []string              `json:"substitutions,omitempty"`
}

func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	ctx := r.Context()

	counters, err := h.pattern.Scan(ctx, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "pattern detector failed")
		return
	}

	verdict, err := h.policy.Evaluate(ctx, req.Domain, req.Pack, counters, req.Features)
	if err != nil {
		if !errors.Is(err, domain.ErrPolicyUnavailable) {
			writeError(w, http.StatusInternalServerError, "policy evaluator failed")
			return
		}
		verdict = domain.PolicyVerdict{} // Decision == "" signals unavailability downstream
	}

	ev := domain.Evidence{Domain: req.Domain, Pack: req.Pack, Policy: verdict, Counters: counters}
	now := time.Now().Unix()

	outcome, err := h.normalizer.Normalize(ctx, ev, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build argumentation framework")
		return
	}

	solved, err := h.solver.Solve(ctx, outcome.Framework)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "solver failed")
		return
	}

	result := h.resolver.Resolve(outcome.Framework, solved, verdict.RiskScoreHint, outcome.Substitutions)
	result.RequestID = middleware.RequestIDFromContext(ctx)

	if h.memory != nil {
		entry := domain.KnowledgeEntry{
			Domain:       req.Domain,
			Outcome:      knowledgeOutcome(result.Verdict),
			MatchedRules: verdict.MatchedRules,
			Timestamp:    now,
		}
		if result.RequestID != "" {
			entry.Meta = map[string]any{"request_id": result.RequestID}
		}
		if err := h.memory.Store(ctx, entry); err != nil {
			h.logger.Warn("failed to record resolution outcome", zap.String("domain", req.Domain), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, toResolveResponse(result))
}

func knowledgeOutcome(v domain.Verdict) domain.Outcome {
	switch v {
	case domain.VerdictDeny:
		return domain.OutcomeDeny
	case domain.VerdictAllowWithModifications:
		return domain.OutcomeModify
	default:
		return domain.OutcomeAllow
	}
}

func toExtensionResponse(e domain.Extension) extensionResponse {
	return extensionResponse{Args: e.Args, Rejected: e.Rejected}
}

func toResolveResponse(res domain.ResolutionResult) resolveResponse {
	preferred := make([]extensionResponse, 0, len(res.Preferred))
	for _, p := range res.Preferred {
		preferred = append(preferred, toExtensionResponse(p))
	}
	stable := make([]extensionResponse, 0, len(res.Stable))
	for _, s := range res.Stable {
		stable = append(stable, toExtensionResponse(s))
	}
	defeats := make([]defeatResponse, 0, len(res.DefeatedMap))
	for _, d := range res.DefeatedMap {
		defeats = append(defeats, defeatResponse{DefeatedID: d.DefeatedID, WinnerID: d.WinnerID})
	}
	explanation := make([]explanationResponse, 0, len(res.Explanation))
	for _, e := range res.Explanation {
		explanation = append(explanation, explanationResponse{ArgumentID: e.ArgumentID, Claim: e.Claim, Defeats: e.Defeats})
	}

	return resolveResponse{
		RequestID:          res.RequestID,
		Verdict:            res.Verdict,
		RiskScore:          res.RiskScore,
		ChosenExtension:    toExtensionResponse(res.ChosenExtension),
		Grounded:           toExtensionResponse(res.Grounded),
		Preferred:          preferred,
		Stable:             stable,
		DefeatedMap:        defeats,
		Explanation:        explanation,
		TimeBudgetExceeded: res.TimeBudgetExceeded,
		Substitutions:      res.Substitutions,
	}
}
