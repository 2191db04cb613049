package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go"

	"github.com/davidbz/howl/internal/domain"
	"github.com/davidbz/howl/internal/observability"
	"github.com/davidbz/howl/internal/provider/openai"
)

// Handler handles HTTP requests.
type Handler struct {
	billing  *domain.BillingService
	listings *domain.ListingService
	usage    *openai.UsageMapper
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	billing *domain.BillingService,
	listings *domain.ListingService,
	usage *openai.UsageMapper,
) *Handler {
	return &Handler{
		billing:  billing,
		listings: listings,
		usage:    usage,
	}
}

type usageRequest struct {
	UserID    string              `json:"user_id"`
	Model     string              `json:"model"`
	Tier      string              `json:"tier,omitempty"`
	Usage     sdk.CompletionUsage `json:"usage"`
	ToolCosts int64               `json:"tool_costs"`
	SessionID string              `json:"session_id,omitempty"`
	TopicID   string              `json:"topic_id,omitempty"`
	MessageID string              `json:"message_id,omitempty"`
}

type rewardRequest struct {
	DeveloperUserID string `json:"developer_user_id"`
	MarketplaceID   string `json:"marketplace_id"`
	TotalConsumed   int64  `json:"total_consumed,omitempty"`
}

type settleRequest struct {
	UserID       string         `json:"user_id"`
	AuthProvider string         `json:"auth_provider"`
	RecordIDs    []string       `json:"record_ids"`
	TotalAmount  int64          `json:"total_amount"`
	AttemptID    string         `json:"attempt_id,omitempty"`
	SessionID    string         `json:"session_id,omitempty"`
	TopicID      string         `json:"topic_id,omitempty"`
	MessageID    string         `json:"message_id,omitempty"`
	Reward       *rewardRequest `json:"reward,omitempty"`
}

type grantRequest struct {
	Amount int64 `json:"amount"`
}

type listingRequest struct {
	OwnerID   string          `json:"owner_id"`
	Published bool            `json:"published"`
	ForkMode  domain.ForkMode `json:"fork_mode"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Required  int64  `json:"required,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// HandleRecordUsage prices a usage event and stores it as a pending record.
func (h *Handler) HandleRecordUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := observability.WithUserID(r.Context(), req.UserID)
	event := h.toEvent(&req)
	ctx = observability.WithTier(ctx, string(event.Tier))

	record, err := h.billing.RecordUsage(ctx, event)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, record)
}

// HandleQuote prices a usage event without recording it.
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, h.billing.Quote(r.Context(), h.toEvent(&req)))
}

// HandleSettle settles a batch of pending records for one chat turn.
func (h *Handler) HandleSettle(w http.ResponseWriter, r *http.Request) {
	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := observability.WithUserID(r.Context(), req.UserID)
	logger := observability.FromContext(ctx)
	logger.Info("settlement request received",
		observability.Int("records", len(req.RecordIDs)),
		observability.Int64("amount", req.TotalAmount),
		observability.Bool("reward", req.Reward != nil),
	)

	turn := domain.SettleTurnRequest{
		SettleRequest: domain.SettleRequest{
			UserID:       req.UserID,
			AuthProvider: req.AuthProvider,
			RecordIDs:    req.RecordIDs,
			TotalAmount:  req.TotalAmount,
		},
		AttemptID: req.AttemptID,
	}
	if req.Reward != nil {
		turn.Reward = &domain.RewardRequest{
			DeveloperUserID: req.Reward.DeveloperUserID,
			ConsumerUserID:  req.UserID,
			MarketplaceID:   req.Reward.MarketplaceID,
			TotalConsumed:   req.Reward.TotalConsumed,
			SessionID:       req.SessionID,
			TopicID:         req.TopicID,
			MessageID:       req.MessageID,
		}
	}

	result, err := h.billing.SettleTurn(ctx, turn)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// HandleGrantCredits adds granted credits to a user's wallet.
func (h *Handler) HandleGrantCredits(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	userID := r.PathValue("userID")
	ctx := observability.WithUserID(r.Context(), userID)

	wallet, err := h.billing.GrantCredits(ctx, userID, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, wallet)
}

// HandleGetWallet returns a user's wallet.
func (h *Handler) HandleGetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.billing.GetWallet(r.Context(), r.PathValue("userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if wallet == nil {
		http.Error(w, "wallet not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, wallet)
}

// HandleGetSummary returns a user's consumption rollup for one auth provider.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.billing.GetSummary(r.Context(), r.PathValue("userID"), r.PathValue("provider"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if summary == nil {
		http.Error(w, "summary not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, summary)
}

// HandleGetDeveloperWallet returns a developer's earnings wallet.
func (h *Handler) HandleGetDeveloperWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.billing.GetDeveloperWallet(r.Context(), r.PathValue("developerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if wallet == nil {
		http.Error(w, "developer wallet not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, wallet)
}

// HandlePutListing creates or updates a marketplace listing.
func (h *Handler) HandlePutListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	listing, err := h.listings.Save(r.Context(), domain.MarketplaceListing{
		ID:        r.PathValue("listingID"),
		OwnerID:   req.OwnerID,
		Published: req.Published,
		ForkMode:  req.ForkMode,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, listing)
}

// HandleGetListing returns a marketplace listing.
func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.Get(r.Context(), r.PathValue("listingID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if listing == nil {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, listing)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Already written status, can't change it, just log.
		return
	}
}

func (h *Handler) toEvent(req *usageRequest) domain.UsageEvent {
	event := h.usage.FromUsage(req.UserID, req.Model, req.Usage)
	if req.Tier != "" {
		// Unknown tiers are priced at the neutral multiplier.
		event.Tier, _ = domain.ParseTier(req.Tier)
	}
	event.ToolCosts = req.ToolCosts
	event.SessionID = req.SessionID
	event.TopicID = req.TopicID
	event.MessageID = req.MessageID
	return event
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *domain.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		available := insufficient.Available
		writeJSON(w, r, http.StatusPaymentRequired, errorResponse{
			Error:     err.Error(),
			Required:  insufficient.Required,
			Available: &available,
		})
	case errors.Is(err, domain.ErrDuplicateSettlement):
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidAmount):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		observability.FromContext(r.Context()).Error("request failed", observability.Error(err))
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.FromContext(r.Context()).Error("failed to encode response", observability.Error(err))
	}
}
