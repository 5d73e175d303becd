package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/AnshRaj112/serenify-advisor/internal/middleware"
	"github.com/AnshRaj112/serenify-advisor/internal/services"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

type authForm struct {
	Username string
	Next     string
}

// RegisterPage shows the registration form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFrom(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, "register", "Register", authForm{})
}

// Register handles the registration form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "register", "Register", authForm{},
			Flash{FlashError, "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	form := authForm{Username: utils.SanitizeInput(username)}

	_, err := h.auth.Register(r.Context(), username, r.PostFormValue("password"))
	var verr *utils.ValidationError
	switch {
	case err == nil:
		h.redirect(w, r, "/login", Flash{FlashSuccess, "Registration successful! Please log in."})
	case errors.As(err, &verr):
		h.render(w, r, http.StatusUnprocessableEntity, "register", "Register", form, Flash{FlashError, verr.Message})
	case errors.Is(err, services.ErrUsernameTaken):
		h.render(w, r, http.StatusConflict, "register", "Register", form,
			Flash{FlashError, "Username already exists. Please choose a different one."})
	default:
		h.log(r).Error("registration error", "error", err)
		h.render(w, r, http.StatusInternalServerError, "register", "Register", form,
			Flash{FlashError, "An error occurred during registration. Please try again."})
	}
}

// LoginPage shows the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, ok := middleware.IdentityFrom(r.Context()); ok {
		http.Redirect(w, r, orDashboard(next), http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, "login", "Log in", authForm{Next: next})
}

// Login checks credentials, sets the session cookie and sends the user on to
// next (local paths only) or the dashboard.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "login", "Log in", authForm{Next: next},
			Flash{FlashError, "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	form := authForm{Username: utils.SanitizeInput(username), Next: next}

	_, cookie, err := h.auth.Login(r.Context(), username, r.PostFormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.render(w, r, http.StatusUnauthorized, "login", "Log in", form,
			Flash{FlashError, "Invalid username or password."})
		return
	}
	if err != nil {
		h.log(r).Error("login error", "error", err)
		h.render(w, r, http.StatusInternalServerError, "login", "Log in", form,
			Flash{FlashError, "An error occurred during login. Please try again."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    cookie,
		Path:     "/",
		MaxAge:   int(services.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, orDashboard(next), http.StatusSeeOther)
}

// Logout ends the session and returns to the landing page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.log(r).Error("logout error", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	h.redirect(w, r, "/", Flash{FlashInfo, "You have been logged out successfully."})
}

// safeNext keeps next only when it is a path on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func orDashboard(next string) string {
	if next == "" {
		return "/dashboard"
	}
	return next
}
