package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"orderdesk/internal/handler"
)

// NewRouter wires the order, user and report endpoints. The auth middleware
// runs on every route; authorization itself lives in the services.
func NewRouter(
	auth *handler.AuthMiddleware,
	orderHandler *handler.OrderHandler,
	userHandler *handler.UserHandler,
	reportHandler *handler.ReportHandler,
	healthCheck http.HandlerFunc,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(auth.Handler)

	r.Get("/health", healthCheck)

	r.Route("/order", func(r chi.Router) {
		r.Get("/list", orderHandler.List)
		r.Get("/my", orderHandler.My)
		r.Get("/details/{id}", orderHandler.Details)
		r.Get("/create", orderHandler.CreateForm)
		r.Post("/create", orderHandler.Create)
		r.Get("/edit/{id}", orderHandler.EditForm)
		r.Post("/edit/{id}", orderHandler.Edit)
		r.Post("/assign/{id}", orderHandler.Assign)
		r.Get("/complete/{id}", orderHandler.Complete)
		r.Get("/cancel/{id}", orderHandler.Cancel)
		r.Get("/delete/{id}", orderHandler.Delete)
		r.Get("/export", reportHandler.ExportForm)
		r.Post("/export", reportHandler.Export)
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/logout", userHandler.Logout)
		r.Get("/profile", userHandler.Profile)
		r.Post("/profile", userHandler.UpdateProfile)
		r.Get("/list", userHandler.List)
		r.Get("/search/{query}", userHandler.Search)
		r.Get("/detail/{id}", userHandler.Detail)
	})

	return r
}
