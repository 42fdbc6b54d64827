package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/middleware"
	"github.com/ratehub/ratehub-backend/internal/models"
	"github.com/ratehub/ratehub-backend/internal/services"
)

const testStoreID = "6b1e8a3e-9f10-4e3c-bd9a-111111111111"

type fakeLedger struct {
	submitFn func(userID, storeID string, value int, comment *string) (services.SubmitResult, error)
	getOwnFn func(userID, storeID string) (*models.Rating, error)
}

func (f *fakeLedger) Submit(_ context.Context, userID, storeID string, value int, comment *string) (services.SubmitResult, error) {
	return f.submitFn(userID, storeID, value, comment)
}

func (f *fakeLedger) Retract(_ context.Context, userID, storeID string) (models.Rating, models.RatingAggregate, error) {
	return models.Rating{ID: "r1", UserID: userID, StoreID: storeID, Value: 3},
		models.RatingAggregate{Average: 3.0, Count: 2}, nil
}

func (f *fakeLedger) GetOwn(_ context.Context, userID, storeID string) (*models.Rating, error) {
	if f.getOwnFn != nil {
		return f.getOwnFn(userID, storeID)
	}
	return nil, nil
}

func (f *fakeLedger) ListForUser(context.Context, string) ([]models.RatingWithStore, error) {
	return []models.RatingWithStore{}, nil
}

func ratingsRouter(l RatingLedger) http.Handler {
	h := NewRatingsHandler(l)
	r := chi.NewRouter()
	r.Post("/ratings", h.Submit)
	r.Get("/stores/{storeID}/rating", h.GetOwn)
	r.Delete("/stores/{storeID}/rating", h.Retract)
	r.Get("/me/ratings", h.ListMine)
	return r
}

func asUser(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{
		ID:   "u1",
		Role: models.RoleUser,
	}))
}

func TestRatingsHandlerSubmitCreated(t *testing.T) {
	ledger := &fakeLedger{
		submitFn: func(userID, storeID string, value int, comment *string) (services.SubmitResult, error) {
			assert.Equal(t, "u1", userID, "rating must belong to the principal")
			assert.Equal(t, testStoreID, storeID)
			assert.Equal(t, 5, value)
			return services.SubmitResult{
				Outcome:   models.OutcomeCreated,
				Rating:    models.Rating{ID: "r1", UserID: userID, StoreID: storeID, Value: value},
				Aggregate: models.RatingAggregate{Average: 5.0, Count: 1},
			}, nil
		},
	}
	srv := ratingsRouter(ledger)

	body := `{"storeId":"` + testStoreID + `","value":5}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Outcome       string  `json:"outcome"`
		AverageRating float64 `json:"averageRating"`
		RatingCount   int64   `json:"ratingCount"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "created", resp.Outcome)
	assert.Equal(t, 5.0, resp.AverageRating)
	assert.Equal(t, int64(1), resp.RatingCount)
}

func TestRatingsHandlerSubmitUpdatedIs200(t *testing.T) {
	ledger := &fakeLedger{
		submitFn: func(userID, storeID string, value int, comment *string) (services.SubmitResult, error) {
			return services.SubmitResult{
				Outcome:   models.OutcomeUpdated,
				Rating:    models.Rating{ID: "r1", UserID: userID, StoreID: storeID, Value: value},
				Aggregate: models.RatingAggregate{Average: 2.0, Count: 1},
			}, nil
		},
	}
	srv := ratingsRouter(ledger)

	body := `{"storeId":"` + testStoreID + `","value":2}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRatingsHandlerSubmitBadRequests(t *testing.T) {
	called := false
	ledger := &fakeLedger{
		submitFn: func(string, string, int, *string) (services.SubmitResult, error) {
			called = true
			return services.SubmitResult{}, nil
		},
	}
	srv := ratingsRouter(ledger)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"storeId":`},
		{"missing store id", `{"value":4}`},
		{"store id not a uuid", `{"storeId":"abc","value":4}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := asUser(httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(tc.body)))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.False(t, called, "ledger must not see invalid requests")
}

func TestRatingsHandlerSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"unknown store", apperr.New(apperr.KindNotFound, "store not found"), http.StatusNotFound, "not_found"},
		{"write conflict", apperr.New(apperr.KindConflict, "concurrent write conflict"), http.StatusConflict, "conflict"},
		{"bad value", apperr.New(apperr.KindInvalidArgument, "value must be an integer between 1 and 5, got 9"), http.StatusBadRequest, "invalid_argument"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledger := &fakeLedger{
				submitFn: func(string, string, int, *string) (services.SubmitResult, error) {
					return services.SubmitResult{}, tc.err
				},
			}
			srv := ratingsRouter(ledger)

			body := `{"storeId":"` + testStoreID + `","value":4}`
			req := asUser(httptest.NewRequest(http.MethodPost, "/ratings", strings.NewReader(body)))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var resp struct {
				Kind string `json:"kind"`
			}
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.kind, resp.Kind)
		})
	}
}

func TestRatingsHandlerGetOwnNull(t *testing.T) {
	srv := ratingsRouter(&fakeLedger{})

	req := asUser(httptest.NewRequest(http.MethodGet, "/stores/"+testStoreID+"/rating", nil))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestRatingsHandlerRetract(t *testing.T) {
	srv := ratingsRouter(&fakeLedger{})

	req := asUser(httptest.NewRequest(http.MethodDelete, "/stores/"+testStoreID+"/rating", nil))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		AverageRating float64 `json:"averageRating"`
		RatingCount   int64   `json:"ratingCount"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3.0, resp.AverageRating)
	assert.Equal(t, int64(2), resp.RatingCount)
}

func TestRatingsHandlerRetractBadStoreID(t *testing.T) {
	srv := ratingsRouter(&fakeLedger{})

	req := asUser(httptest.NewRequest(http.MethodDelete, "/stores/not-a-uuid/rating", nil))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
