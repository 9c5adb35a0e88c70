package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/storefront-system/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware витрины.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.GetProducts)
			r.Get("/{productID}", h.GetProduct)
		})

		r.Route("/cart/{userID}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/add", h.AddToCart())
			r.Post("/remove", h.RemoveFromCart())
			r.Post("/update", h.UpdateCartItem())
			r.Post("/save-for-later", h.SaveForLater())
			r.Post("/move-to-cart", h.MoveToCart())
			r.Post("/remove-from-saved", h.RemoveFromSaved())
			r.Post("/clear", h.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout)
			r.Get("/{userID}", h.GetOrders)
			r.Get("/{userID}/{orderID}", h.GetOrder)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/process", h.ProcessPayment)
			r.Get("/{paymentID}", h.PaymentStatus)
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/user/{userID}", h.GetAddresses)
			r.Post("/", h.CreateAddress)
			r.Get("/{id}", h.GetAddress)
			r.Put("/{id}", h.UpdateAddress)
			r.Delete("/{id}", h.DeleteAddress)
			r.Patch("/{id}/set-default", h.SetDefaultAddress)
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.Get("/user/{userID}", h.GetPaymentMethods)
			r.Post("/", h.CreatePaymentMethod)
			r.Get("/{id}", h.GetPaymentMethod)
			r.Put("/{id}", h.UpdatePaymentMethod)
			r.Delete("/{id}", h.DeletePaymentMethod)
			r.Patch("/{id}/set-default", h.SetDefaultPaymentMethod)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/product/{productID}", h.GetReviews)
			r.Get("/product/{productID}/rating", h.GetRating)
			r.Post("/", h.CreateReview)
			r.Patch("/{id}/helpful", h.MarkReviewHelpful)
		})

		r.Route("/user-profile/{userID}", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/", h.UpdateProfile)
			r.Patch("/last-login", h.TouchLastLogin)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
