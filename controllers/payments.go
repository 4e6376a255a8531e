package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"raffle/middleware"
	"raffle/services"
	"raffle/utils"
)

type PaymentController struct {
	Service *services.RaffleService
}

func NewPaymentController(svc *services.RaffleService) *PaymentController {
	return &PaymentController{Service: svc}
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// POST /api/pay/checkout-session
func (c *PaymentController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req enterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	sess, err := c.Service.StartCheckout(r.Context(), time.Now(), req.Name, req.Email)
	switch {
	case errors.Is(err, services.ErrPaymentUnavailable):
		utils.WriteMessage(w, http.StatusServiceUnavailable, false, "Pagos no configurados.")
	case errors.Is(err, services.ErrDuplicateEntry):
		utils.WriteMessage(w, http.StatusBadRequest, false, "Ya estás participando en el sorteo de esta hora.")
	case errors.Is(err, services.ErrStoreUnavailable):
		utils.WriteMessage(w, http.StatusInternalServerError, false, "Database no disponible")
	case err != nil:
		utils.WriteMessage(w, http.StatusBadGateway, false, "No se pudo crear la sesión de pago.")
	default:
		utils.WriteJSON(w, http.StatusOK, checkoutResponse{ID: sess.ID, URL: sess.URL})
	}
}

// GET /api/pay/confirm?session_id=...
func (c *PaymentController) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		utils.WriteMessage(w, http.StatusBadRequest, false, "Falta session_id.")
		return
	}

	entry, err := c.Service.ConfirmCheckout(r.Context(), sessionID)
	switch {
	case errors.Is(err, services.ErrPaymentUnavailable):
		utils.WriteMessage(w, http.StatusServiceUnavailable, false, "Pagos no configurados.")
	case errors.Is(err, services.ErrPaymentIncomplete):
		utils.WriteMessage(w, http.StatusPaymentRequired, false, "El pago no se ha completado.")
	case errors.Is(err, services.ErrMalformedSession):
		utils.WriteMessage(w, http.StatusBadRequest, false, "Sesión de pago incompleta.")
	case errors.Is(err, services.ErrStoreUnavailable):
		utils.WriteMessage(w, http.StatusInternalServerError, false, "Database no disponible")
	case err != nil:
		utils.WriteMessage(w, http.StatusBadGateway, false, "No se pudo verificar el pago.")
	default:
		utils.WriteJSON(w, http.StatusOK, entryResponse{
			OK:      true,
			Message: "Pago confirmado, ¡estás participando!",
			EntryID: entry.ID,
			DrawID:  entry.DrawID,
		})
	}
}
