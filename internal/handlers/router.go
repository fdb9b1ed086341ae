package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/websocket"
)

type Deps struct {
	JWTSecret      string
	AllowedOrigins string

	Auth          *AuthHandler
	Profile       *ProfileHandler
	Accounts      *AccountHandler
	Transactions  *TransactionHandler
	Cards         *CardHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
	Tables        *TableHandler

	AdminStore middleware.AdminStore
	Hub        *websocket.Hub

	// PrivilegedEnabled mounts the routes that need the service-role handle.
	PrivilegedEnabled bool
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(deps.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", deps.Auth.Register)
		r.Post("/auth/login", deps.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(tokenFromQuery)
			r.Use(middleware.Auth(deps.JWTSecret))

			r.Get("/auth/me", deps.Auth.Me)

			r.Get("/profile", deps.Profile.Get)
			r.Put("/profile", deps.Profile.Update)

			r.Get("/accounts", deps.Accounts.List)
			r.Get("/accounts/{accountID}", deps.Accounts.Get)
			r.Post("/accounts/{accountID}/freeze", deps.Accounts.Freeze)
			r.Post("/accounts/{accountID}/unfreeze", deps.Accounts.Unfreeze)

			r.Get("/transactions", deps.Transactions.List)
			r.Get("/transactions/paginated", deps.Transactions.ListPaginated)
			r.Get("/transactions/stats", deps.Transactions.Stats)
			r.Post("/transactions/transfer", deps.Transactions.Transfer)
			r.Post("/transactions/deposit", deps.Transactions.Deposit)
			r.Post("/transactions/withdraw", deps.Transactions.Withdraw)

			r.Get("/cards", deps.Cards.List)
			r.Post("/cards", deps.Cards.Create)
			r.Post("/cards/{cardID}/activate", deps.Cards.Activate)
			r.Post("/cards/{cardID}/deactivate", deps.Cards.Deactivate)

			r.Get("/notifications", deps.Notifications.List)
			r.Get("/notifications/unread-count", deps.Notifications.UnreadCount)
			r.Post("/notifications/{notificationID}/read", deps.Notifications.MarkRead)
			r.Post("/notifications/read-all", deps.Notifications.MarkAllRead)

			r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
				userID, ok := middleware.UserIDFromContext(r.Context())
				if !ok {
					respondError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				websocket.ServeWS(w, r, deps.Hub, userID)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(deps.AdminStore, ""))

				r.Get("/accounts", deps.Admin.ListAccounts)
				r.Post("/accounts/{accountID}/freeze", deps.Admin.FreezeAccount)
				r.Post("/accounts/{accountID}/unfreeze", deps.Admin.UnfreezeAccount)
				r.Post("/accounts/{accountID}/balance", deps.Admin.AdjustBalance)
				r.Get("/audit-logs", deps.Admin.AuditLogs)

				r.Get("/tables", deps.Tables.ListTables)
				r.Get("/tables/{table}", deps.Tables.GetTableData)
				r.Post("/tables/{table}/rows", deps.Tables.InsertRow)
				r.Put("/tables/{table}/rows/{rowID}", deps.Tables.UpdateRow)
				r.Delete("/tables/{table}/rows/{rowID}", deps.Tables.DeleteRow)

				if deps.PrivilegedEnabled {
					r.Get("/users", deps.Admin.ListUsers)
					r.Post("/users", deps.Admin.ProvisionUser)
					r.Delete("/users/{userID}", deps.Admin.DeleteUser)
					r.Post("/sql", deps.Tables.ExecRaw)
				}
			})
		})
	})

	return r
}

// tokenFromQuery lets browser websocket clients pass the JWT as ?token=,
// since they cannot set an Authorization header on the upgrade request.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		}
		next.ServeHTTP(w, r)
	})
}
