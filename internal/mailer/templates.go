// internal/mailer/templates.go
//
// HTML bodies for the transactional mails.  The site speaks German to its
// audience; the table markup is kept email-client safe (inline styles, no
// flex for the outer frame).
package mailer

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	brandColor = "#dc2626"
	footerLine = "Naje e.V. · Deutschland"
)

// frame wraps body rows in the shared outer table with header and footer.
func frame(subtitle, body string) string {
	return `<table width="100%" cellpadding="0" cellspacing="0" style="background:#f8fafc;padding:24px;font-family:Arial,Helvetica,sans-serif;color:#0f172a;">
<tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border:1px solid #e5e7eb;border-radius:12px;overflow:hidden">
<tr><td style="background:#ffffff;padding:16px;border-bottom:1px solid #e5e7eb" align="left">
<img src="cid:logo" alt="Naje e.V." height="36" style="display:block" />
<div style="font-size:14px;color:#6b7280;margin-top:8px">` + subtitle + `</div>
<div style="height:2px;background:` + brandColor + `;margin-top:8px"></div>
</td></tr>
<tr><td style="padding:24px">` + body + `</td></tr>
<tr><td style="padding:16px;background:#f3f4f6;color:#6b7280;font-size:12px" align="center">` + footerLine + `</td></tr>
</table>
</td></tr>
</table>`
}

// ConfirmationHTML is the double-opt-in mail pointing at confirmURL.
func ConfirmationHTML(name, confirmURL string) string {
	greet := ""
	if name != "" {
		greet = html.EscapeString(name) + ", "
	}
	body := `<h1 style="margin:0 0 12px 0;font-size:20px;color:#111827">Bitte bestätigen Sie Ihre Anmeldung</h1>
<p style="margin:0 0 12px 0;font-size:14px;color:#374151">Hallo ` + greet + `klicken Sie auf den folgenden Button, um Ihre Newsletter-Anmeldung zu bestätigen.</p>
<div style="margin-top:16px"><a href="` + confirmURL + `" style="background:` + brandColor + `;color:#ffffff;text-decoration:none;padding:12px 16px;border-radius:8px;display:inline-block;font-size:14px">Anmeldung bestätigen</a></div>
<p style="margin-top:16px;font-size:12px;color:#6b7280">Falls der Button nicht funktioniert, kopieren Sie diesen Link in Ihren Browser:<br/><span style="word-break:break-all;color:#374151">` + confirmURL + `</span></p>`
	return frame("Naje e.V. – Newsletter Bestätigung", body)
}

// ContactAdminHTML relays a contact submission to the operator inbox.
func ContactAdminHTML(name, email, message string) string {
	body := `<h1 style="margin:0 0 12px 0;font-size:20px;color:#111827">Neue Kontaktanfrage</h1>
<p style="margin:0 0 8px 0;font-size:14px;color:#374151"><strong>Von:</strong> ` +
		html.EscapeString(name) + ` &lt;` + html.EscapeString(email) + `&gt;</p>
<div style="margin-top:16px;padding:16px;border:1px solid #e5e7eb;border-radius:8px;background:#fafafa">
<p style="margin:0;font-size:14px;line-height:1.6;color:#374151">` + nl2br(message) + `</p>
</div>`
	return frame("Naje e.V. – Kontakt", body)
}

// ContactReceiptHTML confirms receipt to the sender.
func ContactReceiptHTML(name, message string) string {
	body := `<h1 style="margin:0 0 12px 0;font-size:20px;color:#111827">Vielen Dank für Ihre Nachricht</h1>
<p style="margin:0 0 8px 0;font-size:14px;color:#374151">Hallo ` + html.EscapeString(name) + `, wir haben Ihre Anfrage erhalten und melden uns bald bei Ihnen.</p>
<div style="margin-top:16px;padding:16px;border:1px solid #e5e7eb;border-radius:8px;background:#fafafa">
<p style="margin:0;font-size:14px;line-height:1.6;color:#374151">` + nl2br(message) + `</p>
</div>`
	return frame("Naje e.V. – Bestätigung", body)
}

// AnnouncementHTML is the broadcast body for a new program or event.
// detailLines are already formatted "Label: value" strings.
func AnnouncementHTML(titleLine string, detailLines []string, summary, imageURL, programURL, calendarURL string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-size:14px;color:#374151;margin-bottom:12px">`)
	b.WriteString(html.EscapeString(strings.Join(detailLines, " · ")))
	b.WriteString(`</div>`)
	if imageURL != "" {
		fmt.Fprintf(&b, `<div style="margin:12px 0"><img src="%s" alt="%s" style="max-width:100%%;border:1px solid #e5e7eb;border-radius:8px"/></div>`,
			imageURL, html.EscapeString(titleLine))
	}
	if summary != "" {
		b.WriteString(`<div style="padding:12px;border:1px solid #e5e7eb;border-radius:8px;background:#fafafa;font-size:14px;color:#374151;line-height:1.6">`)
		b.WriteString(nl2br(summary))
		b.WriteString(`</div>`)
	}
	fmt.Fprintf(&b, `<div style="margin-top:16px"><a href="%s" style="background:%s;color:#ffffff;text-decoration:none;padding:10px 14px;border-radius:8px;display:inline-block;font-size:14px">Programme ansehen</a> <a href="%s" style="background:#0ea5e9;color:#ffffff;text-decoration:none;padding:10px 14px;border-radius:8px;display:inline-block;font-size:14px;margin-left:10px">Zum Google Kalender hinzufügen</a></div>`,
		programURL, brandColor, calendarURL)

	head := `<div style="font-size:16px;color:#111827;font-weight:600">` + html.EscapeString(titleLine) + `</div>` +
		`<div style="height:2px;background:` + brandColor + `;margin-top:8px"></div>`
	return `<table width="100%" cellpadding="0" cellspacing="0" style="background:#f8fafc;padding:24px;font-family:Arial,Helvetica,sans-serif;color:#0f172a;">
<tr><td align="center">
<table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border:1px solid #e5e7eb;border-radius:12px;overflow:hidden">
<tr><td style="background:#ffffff;padding:16px;border-bottom:1px solid #e5e7eb" align="left">` + head + `</td></tr>
<tr><td style="padding:24px">` + b.String() + `</td></tr>
<tr><td style="padding:16px;background:#f3f4f6;color:#6b7280;font-size:12px" align="center">` + footerLine + `</td></tr>
</table>
</td></tr>
</table>`
}

func nl2br(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br/>")
}

/*──────────────────────────── inline logo ─────────────────────────────────*/

var (
	logoOnce  sync.Once
	logoBytes []byte
)

// LogoAttachment returns the inline brand logo read from
// <root>/public/logo-naje.png, or nil when the file is absent.  The read
// happens once per process.
func LogoAttachment(rootDir string) *Attachment {
	logoOnce.Do(func() {
		b, err := os.ReadFile(filepath.Join(rootDir, "public", "logo-naje.png"))
		if err == nil {
			logoBytes = b
		}
	})
	if logoBytes == nil {
		return nil
	}
	return &Attachment{
		Content:     logoBytes,
		Filename:    "logo-naje.png",
		Type:        "image/png",
		Disposition: "inline",
		ContentID:   "logo",
	}
}
