package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"vendly/internal/migration"
	notifctrl "vendly/internal/notification/controller"
	orderctrl "vendly/internal/order/controller"
	proposalctrl "vendly/internal/proposal/controller"
)

func NewRouter(
	orderCtrl *orderctrl.OrderController,
	proposalCtrl *proposalctrl.ProposalController,
	notificationCtrl *notifctrl.NotificationController,
	migrationCtrl *migration.Controller,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderCtrl.Request)
			r.Get("/", orderCtrl.List)
			r.Get("/{orderId}", orderCtrl.Get)
			r.Post("/{orderId}/cancel", orderCtrl.Cancel)
			r.Post("/{orderId}/pay-advance", orderCtrl.PayAdvance)
			r.Post("/{orderId}/deliver", orderCtrl.Deliver)
			r.Post("/{orderId}/accept-delivery", orderCtrl.AcceptDelivery)
			r.Post("/{orderId}/pay-remaining", orderCtrl.PayRemaining)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", proposalCtrl.Create)
			r.Get("/", proposalCtrl.List)
			r.Get("/{proposalId}", proposalCtrl.Get)
			r.Post("/{proposalId}/accept", proposalCtrl.Accept)
			r.Post("/{proposalId}/reject", proposalCtrl.Reject)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationCtrl.List)
			r.Get("/unread-count", notificationCtrl.UnreadCount)
			r.Post("/read-all", notificationCtrl.MarkAllRead)
			r.Post("/{notificationId}/read", notificationCtrl.MarkRead)
			r.Get("/{notificationId}/route", notificationCtrl.Route)
		})

		r.Post("/admin/migrations/two-stage-payment", migrationCtrl.Run)
	})

	logger.Info("router configured")
	return r
}
