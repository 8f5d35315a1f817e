package api

import (
	"net/http"

	"finsight-server/src/events"
	"finsight-server/src/handlers"
	"finsight-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plaid/plaid-go/v41/plaid"
)

func NewRouter(pool *pgxpool.Pool, plaidClient *plaid.APIClient, publisher events.Publisher, isDemo bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(pool))
		r.Post("/register", handlers.Register(pool))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user/{user_id}", handlers.GetUser(pool))
			r.Post("/user/change-password", handlers.ChangePassword(pool))

			// Plaid
			r.Post("/plaid/create-link-token", handlers.CreateLinkToken(plaidClient, pool))
			r.Post("/plaid/exchange-public-token", handlers.ExchangePublicToken(plaidClient, pool))
			r.Get("/plaid/items", handlers.GetPlaidItems(pool))
			r.Delete("/plaid/items/{item_id}", handlers.RemovePlaidItem(pool))
			r.Get("/plaid/transactions/{item_id}/sync", handlers.SyncTransactions(plaidClient, pool))

			// Profile
			r.Get("/profile", handlers.GetProfile(pool))

			// Budget
			r.Post("/budgets/suggest", handlers.SuggestBudget(pool))
			r.Get("/budgets", handlers.GetAllBudgetCategories(pool))

			// Goals
			r.Post("/goals", handlers.CreateGoal(pool))
			r.Get("/goals", handlers.GetAllGoals(pool))
			r.Get("/goals/recommendations", handlers.GetGoalRecommendations(pool))
			r.Post("/goals/allocate", handlers.AllocateToGoals(pool, publisher))
			r.Get("/goals/{goal_id}", handlers.GetGoalByID(pool))
			r.Put("/goals/{goal_id}", handlers.UpdateGoal(pool))
			r.Delete("/goals/{goal_id}", handlers.DeleteGoal(pool))
			r.Post("/goals/{goal_id}/target", handlers.CalculateGoalTarget(pool))
			r.Get("/goals/{goal_id}/allocations", handlers.GetAllocationHistory(pool))

			// Cache
			r.Post("/cache/clear/{cache_name}", handlers.ClearCache())
		})
	})

	return r
}
