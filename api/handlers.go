package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avolve-dao/avolve-sub003/models"
	"github.com/avolve-dao/avolve-sub003/service"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Handlers bundles the services exposed over HTTP
type Handlers struct {
	claims  service.ClaimService
	catalog service.ChallengeCatalog
	ledger  service.LedgerService
	clock   service.Clock
}

// NewHandlers creates the HTTP handler set
func NewHandlers(claims service.ClaimService, catalog service.ChallengeCatalog, ledger service.LedgerService, clock service.Clock) *Handlers {
	return &Handlers{
		claims:  claims,
		catalog: catalog,
		ledger:  ledger,
		clock:   clock,
	}
}

type claimRequest struct {
	ClientDate string `json:"client_date,omitempty"`
}

// PostClaim settles the daily challenge claim for the authenticated user.
func (h *Handlers) PostClaim(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	var clientDate *time.Time
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		var req claimRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
			return
		}
		if req.ClientDate != "" {
			parsed, err := time.Parse(time.DateOnly, req.ClientDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "client_date must be YYYY-MM-DD")
				return
			}
			clientDate = &parsed
		}
	}

	receipt, err := h.claims.Claim(r.Context(), userID, clientDate)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// GetTodaysChallenge returns the challenge active on the server's
// calendar day.
func (h *Handlers) GetTodaysChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.catalog.GetChallengeForDate(r.Context(), h.clock.Today())
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, challengeResponse(challenge))
}

// GetChallenges returns the full weekly challenge schedule.
func (h *Handlers) GetChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.catalog.ListChallenges(r.Context())
	if err != nil {
		writeClaimError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(challenges))
	for _, c := range challenges {
		out = append(out, challengeResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"challenges": out})
}

// GetTokenTypes returns the platform's token reference data.
func (h *Handlers) GetTokenTypes(w http.ResponseWriter, r *http.Request) {
	tokenTypes, err := h.catalog.ListTokenTypes(r.Context())
	if err != nil {
		writeClaimError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(tokenTypes))
	for _, tt := range tokenTypes {
		out = append(out, map[string]any{
			"symbol": tt.Symbol,
			"name":   tt.Name,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": out})
}

// GetBalances returns all balances held by the authenticated user.
func (h *Handlers) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.ledger.GetBalances(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeClaimError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(balances))
	for _, b := range balances {
		out = append(out, balanceResponse(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": out})
}

// GetBalance returns one balance by token symbol.
func (h *Handlers) GetBalance(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	balance, err := h.ledger.GetBalance(r.Context(), userFromContext(r.Context()), symbol)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse(balance))
}

// GetStreak returns the streak record for one reward scope.
func (h *Handlers) GetStreak(w http.ResponseWriter, r *http.Request) {
	scope := chi.URLParam(r, "scope")

	record, err := h.claims.GetStreak(r.Context(), userFromContext(r.Context()), scope)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	resp := map[string]any{
		"scope":          record.Scope,
		"current_streak": record.CurrentStreak,
		"longest_streak": record.LongestStreak,
		"streak_family":  service.StreakFamily(record.CurrentStreak),
	}
	if record.LastClaimDate != nil {
		resp["last_claim_date"] = record.LastClaimDate.Format(time.DateOnly)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetLedger returns the authenticated user's most recent ledger entries.
func (h *Handlers) GetLedger(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		if parsed > maxHistoryLimit {
			parsed = maxHistoryLimit
		}
		limit = parsed
	}

	entries, err := h.ledger.GetHistory(r.Context(), userFromContext(r.Context()), limit)
	if err != nil {
		writeClaimError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":         e.ID,
			"token_type": e.TokenType,
			"amount":     e.Amount,
			"claim_date": e.ClaimDate.Format(time.DateOnly),
			"reason":     e.Reason,
			"created_at": e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func challengeResponse(c *models.Challenge) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"weekday":     int(c.Weekday),
		"token_type":  c.TokenType,
		"base_reward": c.BaseReward,
	}
}

func balanceResponse(b *models.Balance) map[string]any {
	return map[string]any{
		"token_type": b.TokenType,
		"amount":     b.Amount,
	}
}
