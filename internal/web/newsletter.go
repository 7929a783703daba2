// internal/web/newsletter.go
//
// Newsletter endpoints: public signup and confirmation plus the
// admin-gated subscriber listing with CSV export.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/najeorg/naje-backend/internal/subscriber"
)

type subscribeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Email required")
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if email == "" {
		writeError(w, http.StatusBadRequest, "Email required")
		return
	}
	if !emailPattern.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if name != "" && (len(name) < 2 || len(name) > 120) {
		writeError(w, http.StatusBadRequest, "Invalid name")
		return
	}

	if err := s.subs.Subscribe(r.Context(), email, name); err != nil {
		if errors.Is(err, subscriber.ErrMailUnconfigured) {
			writeError(w, http.StatusInternalServerError, "Server not configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Invalid token", http.StatusBadRequest)
		return
	}
	if err := s.subs.Confirm(r.Context(), token); err != nil {
		if errors.Is(err, subscriber.ErrTokenNotFound) {
			http.Error(w, "Token not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, confirmedPage(s.appURL))
}

func (s *Server) handleSubscriberList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := subscriber.Filter{
		Search:   strings.ToLower(q.Get("search")),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	switch q.Get("confirmed") {
	case "true":
		v := true
		f.Confirmed = &v
	case "false":
		v := false
		f.Confirmed = &v
	}
	f.Normalize()

	items, total, err := s.subs.List(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if q.Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename=newsletter.csv")
		if err := subscriber.WriteCSV(w, items); err != nil {
			// Headers are out; nothing sensible left to send.
			return
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"total":    total,
		"page":     f.Page,
		"pageSize": f.Limit,
	})
}

// confirmedPage renders the post-confirmation landing page.  It is the
// one HTML document the API serves; subscribers land here straight from
// their mail client.
func confirmedPage(appURL string) string {
	homeHref := appURL
	if homeHref == "" {
		homeHref = "/"
	}
	logoSrc := "/logo-naje.png"
	if appURL != "" {
		logoSrc = appURL + "/logo-naje.png"
	}
	return `<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Naje e.V. – Newsletter bestätigt</title>
<style>
:root{color-scheme:light}
body{font-family:Arial,Helvetica,sans-serif;background:#f8fafc;color:#0f172a;margin:0;padding:24px}
.wrap{max-width:760px;margin:0 auto}
.card{background:#fff;border:1px solid #e5e7eb;border-radius:12px;overflow:hidden;box-shadow:0 8px 24px rgba(17,24,39,0.06)}
.header{padding:18px 20px;border-bottom:1px solid #e5e7eb;background:#ffffff}
.logo{height:40px;display:block}
.subtitle{font-size:14px;color:#6b7280;margin-top:8px}
.bar{height:2px;background:#dc2626;margin-top:8px}
.content{padding:28px}
h1{margin:0 0 12px 0;font-size:22px;color:#111827}
p{margin:0 0 12px 0;font-size:15px;color:#374151;line-height:1.7}
.actions{margin-top:20px}
.btn{background:#dc2626;color:#ffffff;text-decoration:none;padding:12px 16px;border-radius:8px;display:inline-block;font-size:14px}
.footer{padding:14px;background:#f3f4f6;color:#6b7280;font-size:12px;text-align:center}
</style>
</head>
<body>
<div class="wrap">
<div class="card">
<div class="header">
<img src="` + html.EscapeString(logoSrc) + `" alt="Naje e.V." class="logo" />
<div class="subtitle">Naje e.V. – Newsletter</div>
<div class="bar"></div>
</div>
<div class="content">
<h1>Ihre Anmeldung wurde bestätigt</h1>
<p>Vielen Dank. Sie erhalten künftig Benachrichtigungen zu neuen Veröffentlichungen.</p>
<div class="actions">
<a href="` + html.EscapeString(homeHref) + `" class="btn">Zurück zur Startseite</a>
</div>
</div>
<div class="footer">Naje e.V. · Deutschland</div>
</div>
</div>
</body>
</html>`
}
