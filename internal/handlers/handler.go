package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/middleware"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index", "register", "login", "dashboard", "profile", "ask", "response", "404", "500",
}

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth          *services.AuthService
	Profiles      *services.ProfileService
	Advisor       *services.Advisor
	Checks        []ReadinessCheck
	Logger        *slog.Logger
	SecureCookies bool
	AskLimit      int
	AskWindow     time.Duration
}

type Handler struct {
	auth          *services.AuthService
	profiles      *services.ProfileService
	advisor       *services.Advisor
	checks        []ReadinessCheck
	logger        *slog.Logger
	secureCookies bool
	askLimit      int
	askWindow     time.Duration
	pages         map[string]*template.Template
}

func New(d Deps) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.AskLimit <= 0 {
		d.AskLimit = services.DefaultAskLimit
	}
	if d.AskWindow <= 0 {
		d.AskWindow = services.DefaultAskWindow
	}
	return &Handler{
		auth:          d.Auth,
		profiles:      d.Profiles,
		advisor:       d.Advisor,
		checks:        d.Checks,
		logger:        d.Logger,
		secureCookies: d.SecureCookies,
		askLimit:      d.AskLimit,
		askWindow:     d.AskWindow,
		pages:         pages,
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"join": strings.Join}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

type pageData struct {
	Title   string
	User    *models.Identity
	Flashes []Flash
	Data    any
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context(), h.logger)
}

// render writes page with any pending flash messages plus extra.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, extra ...Flash) {
	t, ok := h.pages[page]
	if !ok {
		h.log(r).Error("unknown template", "page", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pd := pageData{
		Title:   title,
		Flashes: append(consumeFlashes(w, r), extra...),
		Data:    data,
	}
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		pd.User = &id
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		h.log(r).Error("template render failed", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// redirect stores flashes for the next page and sends a 303.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string, flashes ...Flash) {
	if len(flashes) > 0 {
		addFlashes(w, r, flashes...)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (h *Handler) identity(r *http.Request) models.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404", "Page Not Found", nil)
}

// Recover turns panics into the 500 page.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.log(r).Error("internal error", "panic", fmt.Sprint(rec), "path", r.URL.Path)
				h.render(w, r, http.StatusInternalServerError, "500", "Error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
