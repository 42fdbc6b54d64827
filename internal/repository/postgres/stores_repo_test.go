package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

func TestStoresRepo_GetView(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	store := mustCreateStore(t, env, "Viewed Store")
	alice := mustCreateUser(t, env, "alice")
	bob := mustCreateUser(t, env, "bob")

	mustSubmit(t, env, alice.ID, store.ID, 5)
	time.Sleep(20 * time.Millisecond)
	mustSubmit(t, env, bob.ID, store.ID, 2)

	view, err := env.repos.Stores.GetView(env.ctx, store.ID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.ID != store.ID || view.Name != "Viewed Store" {
		t.Fatalf("view store = %s/%s", view.ID, view.Name)
	}
	if view.AverageRating != 3.5 || view.RatingCount != 2 {
		t.Fatalf("view aggregate = %v/%d, want 3.5/2", view.AverageRating, view.RatingCount)
	}
	if len(view.Ratings) != 2 {
		t.Fatalf("view ratings = %d, want 2", len(view.Ratings))
	}
	// the aggregate and the list must describe the same snapshot
	var sum int
	for _, r := range view.Ratings {
		sum += r.Value
	}
	if float64(sum)/float64(len(view.Ratings)) != view.AverageRating {
		t.Fatalf("aggregate %v does not match listed ratings (sum %d over %d)",
			view.AverageRating, sum, len(view.Ratings))
	}
	// most recently updated first, each carrying the rater's name
	if view.Ratings[0].RaterName != "bob" || view.Ratings[1].RaterName != "alice" {
		t.Fatalf("unexpected rater order: %s, %s", view.Ratings[0].RaterName, view.Ratings[1].RaterName)
	}
}

func TestStoresRepo_GetViewUnknown(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	_, err := env.repos.Stores.GetView(env.ctx, uuid.NewString())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("unknown store view: err = %v, want not_found", err)
	}
}

func TestStoresRepo_ListWithViewerRating(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	rated := mustCreateStore(t, env, "Bakery")
	mustCreateStore(t, env, "Cafe")
	viewer := mustCreateUser(t, env, "viewer")
	other := mustCreateUser(t, env, "other")

	mustSubmit(t, env, viewer.ID, rated.ID, 4)
	mustSubmit(t, env, other.ID, rated.ID, 2)

	stores, err := env.repos.Stores.List(env.ctx, repo.StoreFilters{}, &viewer.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("list size = %d, want 2", len(stores))
	}
	byName := map[string]models.StoreSummary{}
	for _, s := range stores {
		byName[s.Name] = s
	}
	bakery := byName["Bakery"]
	if bakery.AverageRating != 3.0 || bakery.RatingCount != 2 {
		t.Fatalf("bakery aggregate = %v/%d, want 3.0/2", bakery.AverageRating, bakery.RatingCount)
	}
	if bakery.MyRating == nil || *bakery.MyRating != 4 {
		t.Fatalf("bakery myRating = %v, want 4", bakery.MyRating)
	}
	cafe := byName["Cafe"]
	if cafe.AverageRating != 0 || cafe.RatingCount != 0 || cafe.MyRating != nil {
		t.Fatalf("cafe = %v/%d/%v, want 0/0/nil", cafe.AverageRating, cafe.RatingCount, cafe.MyRating)
	}

	// anonymous listing has no myRating anywhere
	stores, err = env.repos.Stores.List(env.ctx, repo.StoreFilters{}, nil)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	for _, s := range stores {
		if s.MyRating != nil {
			t.Fatalf("anonymous list leaked myRating for %s", s.Name)
		}
	}
}

func TestStoresRepo_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	if _, err := env.repos.Stores.Create(env.ctx, models.Store{
		Name: "North Books", Email: "n@example.com", Address: "12 Harbor Road",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.repos.Stores.Create(env.ctx, models.Store{
		Name: "South Books", Email: "s@example.com", Address: "9 Hill Lane",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stores, err := env.repos.Stores.List(env.ctx, repo.StoreFilters{Name: "north"}, nil)
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(stores) != 1 || stores[0].Name != "North Books" {
		t.Fatalf("name filter returned %d rows", len(stores))
	}

	stores, err = env.repos.Stores.List(env.ctx, repo.StoreFilters{Address: "harbor"}, nil)
	if err != nil {
		t.Fatalf("list by address: %v", err)
	}
	if len(stores) != 1 || stores[0].Name != "North Books" {
		t.Fatalf("address filter returned %d rows", len(stores))
	}

	stores, err = env.repos.Stores.List(env.ctx, repo.StoreFilters{Name: "books", Address: "hill"}, nil)
	if err != nil {
		t.Fatalf("list by both: %v", err)
	}
	if len(stores) != 1 || stores[0].Name != "South Books" {
		t.Fatalf("combined filter returned %d rows", len(stores))
	}
}

func TestStoresRepo_DeleteCascadesRatings(t *testing.T) {
	env := newTestEnv(t)
	defer env.cleanup()

	store := mustCreateStore(t, env, "Doomed Store")
	user := mustCreateUser(t, env, "carol")
	mustSubmit(t, env, user.ID, store.ID, 4)

	if err := env.repos.Stores.Delete(env.ctx, store.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int64
	if err := env.pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM ratings WHERE store_id=$1`, store.ID).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("ratings left after store delete = %d, want 0", n)
	}

	if err := env.repos.Stores.Delete(env.ctx, store.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("double delete: err = %v, want not_found", err)
	}
}
