package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/internal/api/httpx"
	"github.com/ratehub/ratehub-backend/internal/api/validate"
	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/internal/models"
	"github.com/ratehub/ratehub-backend/internal/services"
)

// RatingLedger is the slice of the rating service the HTTP layer consumes.
type RatingLedger interface {
	Submit(ctx context.Context, userID, storeID string, value int, comment *string) (services.SubmitResult, error)
	Retract(ctx context.Context, userID, storeID string) (models.Rating, models.RatingAggregate, error)
	GetOwn(ctx context.Context, userID, storeID string) (*models.Rating, error)
	ListForUser(ctx context.Context, userID string) ([]models.RatingWithStore, error)
}

type RatingsHandler struct {
	ledger RatingLedger
}

func NewRatingsHandler(l RatingLedger) *RatingsHandler { return &RatingsHandler{ledger: l} }

type submitReq struct {
	StoreID string  `json:"storeId" validate:"required,uuid"`
	Value   int     `json:"value"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type submitResp struct {
	Outcome       models.RatingOutcome `json:"outcome"`
	Rating        models.Rating        `json:"rating"`
	AverageRating float64              `json:"averageRating"`
	RatingCount   int64                `json:"ratingCount"`
}

// Submit handles POST /ratings. The rating always belongs to the principal;
// a body-supplied user id is not accepted.
func (h *RatingsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed request body", nil)
		return
	}
	if errs := validate.Struct(req); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "validation failed", errs)
		return
	}

	res, err := h.ledger.Submit(r.Context(), p.ID, req.StoreID, req.Value, req.Comment)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	status := http.StatusOK
	if res.Outcome == models.OutcomeCreated {
		status = http.StatusCreated
	}
	httpx.WriteJSON(w, status, submitResp{
		Outcome:       res.Outcome,
		Rating:        res.Rating,
		AverageRating: res.Aggregate.Average,
		RatingCount:   res.Aggregate.Count,
	})
}

type retractResp struct {
	Rating        models.Rating `json:"rating"`
	AverageRating float64       `json:"averageRating"`
	RatingCount   int64         `json:"ratingCount"`
}

// Retract handles DELETE /stores/{storeID}/rating.
func (h *RatingsHandler) Retract(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	storeID := chi.URLParam(r, "storeID")
	if uuid.Validate(storeID) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed store id", nil)
		return
	}
	rating, agg, err := h.ledger.Retract(r.Context(), p.ID, storeID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, retractResp{
		Rating:        rating,
		AverageRating: agg.Average,
		RatingCount:   agg.Count,
	})
}

// GetOwn handles GET /stores/{storeID}/rating; the body is null when the
// principal has not rated the store.
func (h *RatingsHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	storeID := chi.URLParam(r, "storeID")
	if uuid.Validate(storeID) != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(apperr.KindInvalidArgument), "malformed store id", nil)
		return
	}
	rating, err := h.ledger.GetOwn(r.Context(), p.ID, storeID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rating)
}

type userRatingsResp struct {
	Ratings []models.RatingWithStore `json:"ratings"`
}

// ListMine handles GET /me/ratings.
func (h *RatingsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFrom(r.Context())
	ratings, err := h.ledger.ListForUser(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userRatingsResp{Ratings: ratings})
}
