package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/services"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

const crisisMessage = "If you are thinking about harming yourself, please reach out now: " +
	"call your local emergency number or a crisis line such as 988 (US), or talk to someone you trust."

type askForm struct {
	Question string
	Limit    int
	Window   string
}

func (h *Handler) newAskForm(question string) askForm {
	return askForm{Question: question, Limit: h.askLimit, Window: windowLabel(h.askWindow)}
}

// windowLabel renders a rate window for "per ..." text: "hour", "2 hours",
// "30 minutes".
func windowLabel(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "hour"
	case d == time.Minute:
		return "minute"
	case d > time.Hour && d%time.Hour == 0:
		return strconv.Itoa(int(d/time.Hour)) + " hours"
	case d > time.Minute && d%time.Minute == 0:
		return strconv.Itoa(int(d/time.Minute)) + " minutes"
	default:
		return d.String()
	}
}

type answerData struct {
	Question   string
	Paragraphs []string
}

func (h *Handler) AskPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "ask", "Ask", h.newAskForm(""))
}

// Ask submits a question to the advisor and renders the answer, or the form
// again with a message explaining why there is none.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "ask", "Ask", h.newAskForm(""),
			Flash{FlashError, "Invalid form submission."})
		return
	}
	raw := r.PostFormValue("question")
	form := h.newAskForm(utils.SanitizeInput(raw))

	if err := services.ValidateQuestion(raw); err != nil {
		var verr *utils.ValidationError
		msg := "Please enter a valid question."
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		h.render(w, r, http.StatusUnprocessableEntity, "ask", "Ask", form, Flash{FlashError, msg})
		return
	}

	res := h.advisor.Ask(r.Context(), h.identity(r), raw)
	var flashes []Flash
	if res.Crisis {
		flashes = append(flashes, Flash{FlashWarning, crisisMessage})
	}

	switch res.Outcome {
	case services.OutcomeAnswered:
		h.render(w, r, http.StatusOK, "response", "Your answer", answerData{
			Question:   res.Question,
			Paragraphs: paragraphs(res.Answer),
		}, flashes...)
	case services.OutcomeRateLimited:
		h.render(w, r, http.StatusTooManyRequests, "ask", "Ask", form, append(flashes,
			Flash{FlashWarning, fmt.Sprintf("You have reached the limit of %d questions per %s. Please try again later.", form.Limit, form.Window)})...)
	case services.OutcomeNotConfigured:
		h.render(w, r, http.StatusServiceUnavailable, "ask", "Ask", form, append(flashes,
			Flash{FlashError, "AI is not configured (missing GOOGLE_API_KEY/GEMINI_API_KEY)."})...)
	default:
		h.render(w, r, http.StatusServiceUnavailable, "ask", "Ask", form, append(flashes,
			Flash{FlashError, "AI service is currently unavailable. Please try again shortly."})...)
	}
}

// paragraphs splits model text on blank lines.
func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
