// internal/web/contact.go
//
// Contact form endpoint.
//
// Context
// -------
// Validation runs before the rate limiter so malformed spam never burns
// a client's budget.  Two synchronous sends follow: the relay to the
// operator inbox (reply-to set to the sender) and a receipt back to the
// sender.  Either failure surfaces as a 500 with the deliberately vague
// "Send failed"; the submission is not persisted anywhere.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/metrics"
	"github.com/najeorg/naje-backend/internal/requestinfo"
)

// emailPattern is intentionally loose: one @, no whitespace, a dot in
// the domain.  Deliverability is proven by the mail provider, not here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// linkPattern counts URL-ish tokens for the spam heuristic.
var linkPattern = regexp.MustCompile(`(?i)https?://|www\.`)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)

	switch {
	case name == "" || email == "" || message == "":
		writeError(w, http.StatusBadRequest, "Invalid payload")
		return
	case !emailPattern.MatchString(email):
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	case len(name) < 2 || len(name) > 120:
		writeError(w, http.StatusBadRequest, "Invalid name")
		return
	case len(message) < 10 || len(message) > 4000:
		writeError(w, http.StatusBadRequest, "Invalid message")
		return
	case len(linkPattern.FindAllString(message, -1)) > 3:
		writeError(w, http.StatusBadRequest, "Too many links")
		return
	}

	info := requestinfo.FromContext(r.Context())
	if !s.limiter.Allow(info.ClientID) {
		writeError(w, http.StatusTooManyRequests, "Rate limited")
		return
	}

	if s.mail == nil || s.contactTo == "" {
		writeError(w, http.StatusInternalServerError, "Server not configured")
		return
	}

	var attachments []mailer.Attachment
	if s.logo != nil {
		attachments = append(attachments, *s.logo)
	}

	relay := mailer.Message{
		To:          []mailer.Address{{Email: s.contactTo}},
		From:        s.from,
		ReplyTo:     &mailer.Address{Email: email, Name: name},
		Subject:     "Neue Kontaktanfrage – " + name,
		Text:        fmt.Sprintf("Von: %s <%s>\n\n%s", name, email, message),
		HTML:        mailer.ContactAdminHTML(name, email, message),
		Attachments: attachments,
	}
	receipt := mailer.Message{
		To:          []mailer.Address{{Email: email, Name: name}},
		From:        s.from,
		Subject:     "Ihre Nachricht wurde empfangen – Naje e.V.",
		Text:        fmt.Sprintf("Hallo %s,\n\nVielen Dank für Ihre Nachricht. Wir melden uns bald bei Ihnen.\n\nIhre Nachricht:\n%s", name, message),
		HTML:        mailer.ContactReceiptHTML(name, message),
		Attachments: attachments,
	}

	for _, msg := range []mailer.Message{relay, receipt} {
		if err := s.mail.Send(r.Context(), msg); err != nil {
			metrics.MailErrorsTotal.WithLabelValues("contact").Inc()
			zap.S().Errorw("contact send failed", "client", info.ClientID, "error", err)
			writeError(w, http.StatusInternalServerError, "Send failed")
			return
		}
		metrics.MailSentTotal.WithLabelValues("contact").Inc()
	}

	zap.S().Infow("contact relayed",
		"client", info.ClientID,
		"country", info.CountryISO,
		"browser", info.UA.Browser,
		"bot", info.UA.IsBot)
	writeJSON(w, http.StatusOK, okBody)
}
