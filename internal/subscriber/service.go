// internal/subscriber/service.go
//
// Double-opt-in subscription flow.
//
// Subscribe normalises the address, draws a fresh single-use token, and
// upserts; only then is the confirmation mail sent, so a provider outage
// never leaves a token the subscriber could not have received by a later
// retry.  Confirm consumes the token.  Neither operation ever logs or
// returns a token value.
package subscriber

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/metrics"
)

// ErrMailUnconfigured is returned by Subscribe when no mail provider is
// configured; without the confirmation mail the opt-in can never finish,
// so accepting the subscription would strand it.
var ErrMailUnconfigured = errors.New("subscriber: mail provider not configured")

const tokenBytes = 24

// Service owns the subscription lifecycle.
type Service struct {
	repo Repository
	mail mailer.Sender // nil when unconfigured
	from mailer.Address
	logo *mailer.Attachment
	url  string // public app URL for confirmation links
	loc  *time.Location
	now  func() time.Time
}

// NewService wires the flow.  mail may be nil; loc anchors the derived
// calendar columns (the site's local timezone).
func NewService(repo Repository, mail mailer.Sender, from mailer.Address, logo *mailer.Attachment, appURL string, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		mail: mail,
		from: from,
		logo: logo,
		url:  strings.TrimRight(appURL, "/"),
		loc:  loc,
		now:  time.Now,
	}
}

// Subscribe registers email (case-folded) and sends the confirmation
// mail.  Re-subscribing an existing address refreshes the token only.
// name may be empty.
func (s *Service) Subscribe(ctx context.Context, email, name string) error {
	if s.mail == nil {
		return ErrMailUnconfigured
	}

	email = strings.ToLower(strings.TrimSpace(email))

	token, err := newToken()
	if err != nil {
		return err
	}

	now := s.now()
	local := now.In(s.loc)
	sub := &Subscription{
		Email:        email,
		SubscribedAt: now,
		Date:         local.Format("2006-01-02"),
		Hour:         local.Hour(),
		Weekday:      int(local.Weekday()),
	}
	if name != "" {
		sub.Name = &name
	}

	if err := s.repo.Upsert(ctx, sub, token, now); err != nil {
		return fmt.Errorf("subscriber: upsert: %w", err)
	}

	confirmURL := s.url + "/api/newsletter/confirm?token=" + token
	msg := mailer.Message{
		To:      []mailer.Address{{Email: email, Name: name}},
		From:    s.from,
		Subject: "Bitte bestätigen Sie Ihre Newsletter-Anmeldung",
		HTML:    mailer.ConfirmationHTML(name, confirmURL),
	}
	if s.logo != nil {
		msg.Attachments = append(msg.Attachments, *s.logo)
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		metrics.MailErrorsTotal.WithLabelValues("confirmation").Inc()
		return fmt.Errorf("subscriber: confirmation mail: %w", err)
	}
	metrics.MailSentTotal.WithLabelValues("confirmation").Inc()

	zap.S().Infow("subscription upserted", "email", email)
	return nil
}

// Confirm consumes token.  ErrTokenNotFound distinguishes an unknown or
// already-used token from a storage failure.
func (s *Service) Confirm(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenNotFound
	}
	if err := s.repo.ConfirmByToken(ctx, token); err != nil {
		return err
	}
	zap.S().Infow("subscription confirmed")
	return nil
}

// List proxies to the repository; filtering and pagination live there.
func (s *Service) List(ctx context.Context, f Filter) ([]Subscription, int, error) {
	return s.repo.List(ctx, f)
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("subscriber: token generation: %w", err)
	}
	return hex.EncodeToString(b), nil
}
