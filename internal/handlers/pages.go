package handlers

import (
	"net/http"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/internal/services"
)

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "index", "", nil)
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusFound)
}

type dashboardData struct {
	Recent  []models.QARecord
	Profile *models.UserProfile
}

// Dashboard shows the latest answers and the profile. Load failures degrade
// to an empty page with an error flash.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	recent, err := h.advisor.History(r.Context(), id, services.RecentHistoryLen)
	if err == nil {
		var p *models.UserProfile
		p, err = h.profiles.Profile(r.Context(), id)
		if err == nil {
			h.render(w, r, http.StatusOK, "dashboard", "Dashboard", dashboardData{Recent: recent, Profile: p})
			return
		}
	}

	h.log(r).Error("dashboard error", "user_id", id.UserID, "error", err)
	h.render(w, r, http.StatusOK, "dashboard", "Dashboard", dashboardData{},
		Flash{FlashError, "Error loading dashboard data."})
}
