package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/internal/services"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

type stressOption struct {
	Value   string
	Label   string
	Checked bool
}

type profileForm struct {
	Age           string
	Goals         string
	StressOptions []stressOption
	Therapy       bool
	Meditation    bool
}

func stressOptions(selected []string) []stressOption {
	p := models.UserProfile{StressLevel: selected}
	opts := make([]stressOption, 0, len(models.StressLevels))
	for _, s := range models.StressLevels {
		opts = append(opts, stressOption{Value: s, Label: strings.ToUpper(s[:1]) + s[1:], Checked: p.HasStress(s)})
	}
	return opts
}

func formFromProfile(p *models.UserProfile) profileForm {
	f := profileForm{
		Goals:         strings.Join(p.Goals, "\n"),
		StressOptions: stressOptions(p.StressLevel),
		Therapy:       p.Preferences.Therapy,
		Meditation:    p.Preferences.Meditation,
	}
	if p.Age != nil {
		f.Age = strconv.Itoa(*p.Age)
	}
	return f
}

// ProfilePage shows the profile form filled from the stored profile.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)
	p, err := h.profiles.Profile(r.Context(), id)
	if err != nil {
		h.log(r).Error("profile load error", "user_id", id.UserID, "error", err)
		h.render(w, r, http.StatusOK, "profile", "Profile", profileForm{StressOptions: stressOptions(nil)},
			Flash{FlashError, "Error loading profile."})
		return
	}
	h.render(w, r, http.StatusOK, "profile", "Profile", formFromProfile(p))
}

// UpdateProfile saves the profile form.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/profile", Flash{FlashError, "Invalid form submission."})
		return
	}
	in := services.ProfileInput{
		Age:         r.PostFormValue("age"),
		Goals:       r.PostFormValue("goals"),
		StressLevel: r.PostForm["stress_level"],
		Therapy:     r.PostFormValue("therapy") != "",
		Meditation:  r.PostFormValue("meditation") != "",
	}
	form := profileForm{
		Age:           utils.SanitizeInput(in.Age),
		Goals:         in.Goals,
		StressOptions: stressOptions(in.StressLevel),
		Therapy:       in.Therapy,
		Meditation:    in.Meditation,
	}

	id := h.identity(r)
	_, err := h.profiles.UpdateProfile(r.Context(), id, in)
	var verr *utils.ValidationError
	switch {
	case err == nil:
		h.redirect(w, r, "/profile", Flash{FlashSuccess, "Profile updated successfully!"})
	case errors.As(err, &verr):
		h.render(w, r, http.StatusUnprocessableEntity, "profile", "Profile", form, Flash{FlashError, verr.Message})
	default:
		h.log(r).Error("profile update error", "user_id", id.UserID, "error", err)
		h.render(w, r, http.StatusInternalServerError, "profile", "Profile", form,
			Flash{FlashError, "Error updating profile. Please try again."})
	}
}
