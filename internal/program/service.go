// internal/program/service.go
//
// Program/event lifecycle on top of the repository.
//
// Context
// -------
// The public listing is the hottest path on the site, so its JSON payload
// is cached for 60 seconds under a key derived from the normalized filter;
// concurrent identical fills collapse through singleflight.  Creating an
// entry triggers a best-effort broadcast to every confirmed newsletter
// subscriber (batches of 100, calendar attachment) and then clears the
// listing cache; neither step can fail the create.
package program

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/najeorg/naje-backend/internal/cache"
	"github.com/najeorg/naje-backend/internal/ics"
	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/metrics"
)

const (
	listTTL        = 60 * time.Second
	broadcastChunk = 100
)

// Recipients yields the broadcast audience.  The subscriber repository
// satisfies it.
type Recipients interface {
	ConfirmedEmails(ctx context.Context) ([]string, error)
}

// Service owns the program lifecycle.
type Service struct {
	repo  Repository
	cache *cache.Cache
	mail  mailer.Sender // nil disables broadcasts
	recip Recipients
	from  mailer.Address
	url   string // public app URL
	loc   *time.Location
	now   func() time.Time
	sf    singleflight.Group
}

// NewService wires the lifecycle.  mail and recip may be nil; the create
// path then skips the broadcast.
func NewService(repo Repository, c *cache.Cache, mail mailer.Sender, recip Recipients, from mailer.Address, appURL string, loc *time.Location) *Service {
	return &Service{
		repo:  repo,
		cache: c,
		mail:  mail,
		recip: recip,
		from:  from,
		url:   strings.TrimRight(appURL, "/"),
		loc:   loc,
		now:   time.Now,
	}
}

// listPayload is the cached and served listing shape.
type listPayload struct {
	Items    []Program `json:"items"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// List returns the serialized listing payload for f, from cache when
// fresh.
func (s *Service) List(ctx context.Context, f ListFilter) ([]byte, error) {
	f.Normalize()

	keyBytes, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	key := "programs:" + string(keyBytes)

	if v, ok := s.cache.Get(ctx, key); ok {
		return []byte(v), nil
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		items, err := s.repo.List(ctx, f)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(listPayload{Items: items, Page: f.Page, PageSize: f.Limit})
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, string(payload), listTTL)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Get fetches one entry.
func (s *Service) Get(ctx context.Context, id uint64) (*Program, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores in and returns the new id.  Broadcast and cache
// invalidation run afterwards and cannot fail the call.
func (s *Service) Create(ctx context.Context, in Input) (uint64, error) {
	now := s.now()
	p := &Program{
		Title:     strings.TrimSpace(in.Title),
		Summary:   in.Summary,
		Date:      strings.TrimSpace(in.Date),
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	setOpt(&p.Time, in.Time)
	setOpt(&p.Location, in.Location)
	setOpt(&p.Organizer, in.Organizer)
	setOpt(&p.Image, in.Image)

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	p.ID = id

	s.broadcast(ctx, p)
	s.cache.Clear()

	zap.S().Infow("program created", "id", id, "type", p.Type)
	return id, nil
}

// Update applies patch; ErrNotFound when id matches nothing.
func (s *Service) Update(ctx context.Context, id uint64, patch Patch) error {
	return s.repo.Update(ctx, id, patch, s.now())
}

// Delete removes one entry; ErrNotFound when id matches nothing.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	return s.repo.Delete(ctx, id)
}

// broadcast mails p to every confirmed subscriber in chunks.  Every
// failure is logged and swallowed: the entry is already stored.
func (s *Service) broadcast(ctx context.Context, p *Program) {
	if s.mail == nil || s.recip == nil {
		return
	}

	emails, err := s.recip.ConfirmedEmails(ctx)
	if err != nil {
		zap.S().Warnw("broadcast recipient lookup failed", "error", err)
		return
	}
	if len(emails) == 0 {
		return
	}

	kind := "Programm"
	if p.Type == TypeEvent {
		kind = "Veranstaltung"
	}
	titleLine := kind + " – " + p.Title

	details := make([]string, 0, 4)
	details = append(details, "Datum: "+p.Date)
	if p.Time != nil {
		details = append(details, "Uhrzeit: "+*p.Time)
	}
	if p.Location != nil {
		details = append(details, "Ort: "+*p.Location)
	}
	if p.Organizer != nil {
		details = append(details, "Veranstalter: "+*p.Organizer)
	}

	ev := ics.Event{
		UID:         fmt.Sprintf("program-%d@naje", p.ID),
		Title:       p.Title,
		Description: p.Summary,
		Date:        p.Date,
	}
	if p.Time != nil {
		ev.Time = *p.Time
	}
	if p.Location != nil {
		ev.Location = *p.Location
	}

	calendarURL, err := ics.GoogleCalendarURL(ev, s.loc)
	if err != nil {
		zap.S().Warnw("broadcast calendar link failed", "id", p.ID, "error", err)
		return
	}
	icsDoc, err := ics.Generate(ev, s.loc)
	if err != nil {
		zap.S().Warnw("broadcast ics failed", "id", p.ID, "error", err)
		return
	}

	image := ""
	if p.Image != nil {
		image = *p.Image
	}
	html := mailer.AnnouncementHTML(titleLine, details, p.Summary, image,
		s.url+"/#programs-events", calendarURL)

	attachment := mailer.Attachment{
		Content:     []byte(icsDoc),
		Filename:    ics.Filename(p.Title, p.Date),
		Type:        "text/calendar",
		Disposition: "attachment",
	}

	for start := 0; start < len(emails); start += broadcastChunk {
		end := start + broadcastChunk
		if end > len(emails) {
			end = len(emails)
		}
		to := make([]mailer.Address, 0, end-start)
		for _, e := range emails[start:end] {
			to = append(to, mailer.Address{Email: e})
		}
		msg := mailer.Message{
			To:          to,
			From:        s.from,
			Subject:     titleLine,
			HTML:        html,
			Attachments: []mailer.Attachment{attachment},
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			metrics.MailErrorsTotal.WithLabelValues("broadcast").Inc()
			zap.S().Warnw("broadcast batch failed", "id", p.ID, "batch", start/broadcastChunk, "error", err)
			continue
		}
		metrics.MailSentTotal.WithLabelValues("broadcast").Inc()
		metrics.BroadcastBatchesTotal.Inc()
	}
}

func setOpt(dst **string, v string) {
	v = strings.TrimSpace(v)
	if v != "" {
		*dst = &v
	}
}
