package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Post("/input", h.Input)
		r.Post("/actions/{action}", h.Action)
		r.Post("/evaluate", h.Evaluate)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.History)
			r.Delete("/", h.ClearHistory)
			r.Delete("/{id}", h.DeleteEntry)
			r.Post("/{id}/recall", h.RecallEntry)
		})
	})
}
