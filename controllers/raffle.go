package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"raffle/middleware"
	"raffle/services"
	"raffle/utils"
)

type RaffleController struct {
	Service *services.RaffleService
}

func NewRaffleController(svc *services.RaffleService) *RaffleController {
	return &RaffleController{Service: svc}
}

type enterRequest struct {
	Name  string `json:"name" validate:"required,namemin"`
	Email string `json:"email" validate:"required,emailok"`
}

type entryResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	EntryID uint   `json:"entry_id"`
	DrawID  string `json:"draw_id"`
}

type winnerView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type closeResponse struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message"`
	Winner  *winnerView `json:"winner,omitempty"`
}

// GET /api/status
func (c *RaffleController) Status(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.Status(r.Context(), time.Now())
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, false, "Database no disponible")
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// POST /api/enter
func (c *RaffleController) Enter(w http.ResponseWriter, r *http.Request) {
	var req enterRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	entry, err := c.Service.Enter(r.Context(), time.Now(), req.Name, req.Email)
	switch {
	case errors.Is(err, services.ErrPaymentRequired):
		utils.WriteMessage(w, http.StatusForbidden, false, "Este sorteo requiere pago para participar.")
	case errors.Is(err, services.ErrDuplicateEntry):
		utils.WriteMessage(w, http.StatusBadRequest, false, "Ya estás participando en el sorteo de esta hora.")
	case err != nil:
		utils.WriteMessage(w, http.StatusInternalServerError, false, "Database no disponible")
	default:
		utils.WriteJSON(w, http.StatusOK, entryResponse{
			OK:      true,
			Message: "¡Entraste al sorteo de esta hora!",
			EntryID: entry.ID,
			DrawID:  entry.DrawID,
		})
	}
}

// POST /api/close-current
//
// Triggered by an external scheduler at least once per hour; safe to invoke
// any number of times. Optionally guarded via X-CRON-KEY when CRON_KEY is set.
func (c *RaffleController) CloseCurrent(w http.ResponseWriter, r *http.Request) {
	if key := os.Getenv("CRON_KEY"); key != "" && r.Header.Get("X-CRON-KEY") != key {
		utils.WriteMessage(w, http.StatusUnauthorized, false, "Unauthorized")
		return
	}

	res, err := c.Service.CloseCurrent(r.Context(), time.Now())
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, false, "Database no disponible")
		return
	}

	draw := res.Draw
	if draw.WinnerName == nil {
		msg := "Sorteo cerrado sin participantes."
		if res.AlreadyClosed {
			msg = "El sorteo ya estaba cerrado sin participantes."
		}
		utils.WriteJSON(w, http.StatusOK, closeResponse{OK: true, Message: msg})
		return
	}

	msg := "Sorteo cerrado y ganador elegido."
	if res.AlreadyClosed {
		msg = "El sorteo ya estaba cerrado; se mantiene el ganador."
	}
	winner := &winnerView{Name: *draw.WinnerName}
	if draw.WinnerEmail != nil {
		winner.Email = *draw.WinnerEmail
	}
	utils.WriteJSON(w, http.StatusOK, closeResponse{OK: true, Message: msg, Winner: winner})
}
