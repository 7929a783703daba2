package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najeorg/naje-backend/internal/auth"
	"github.com/najeorg/naje-backend/internal/mailer"
	"github.com/najeorg/naje-backend/internal/program"
	"github.com/najeorg/naje-backend/internal/ratelimit"
	"github.com/najeorg/naje-backend/internal/subscriber"
)

const adminToken = "op-token"

/*─────────────────────────── test fixtures ────────────────────────────────*/

type memSender struct {
	sent []mailer.Message
	err  error
}

func (m *memSender) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// memSubRepo keeps subscriptions in a map, mirroring the unique-email
// upsert of the real table.
type memSubRepo struct {
	subs   map[string]*subscriber.Subscription
	tokens map[string]string // token -> email
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{subs: map[string]*subscriber.Subscription{}, tokens: map[string]string{}}
}

func (m *memSubRepo) Upsert(_ context.Context, sub *subscriber.Subscription, token string, _ time.Time) error {
	if _, ok := m.subs[sub.Email]; !ok {
		m.subs[sub.Email] = sub
	}
	for t, e := range m.tokens {
		if e == sub.Email {
			delete(m.tokens, t)
		}
	}
	m.tokens[token] = sub.Email
	return nil
}

func (m *memSubRepo) ConfirmByToken(_ context.Context, token string) error {
	email, ok := m.tokens[token]
	if !ok {
		return subscriber.ErrTokenNotFound
	}
	m.subs[email].Confirmed = true
	delete(m.tokens, token)
	return nil
}

func (m *memSubRepo) List(_ context.Context, _ subscriber.Filter) ([]subscriber.Subscription, int, error) {
	out := make([]subscriber.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *memSubRepo) ConfirmedEmails(context.Context) ([]string, error) {
	var out []string
	for _, s := range m.subs {
		if s.Confirmed {
			out = append(out, s.Email)
		}
	}
	return out, nil
}

// memProgRepo is an in-memory program store.
type memProgRepo struct {
	rows    map[uint64]*program.Program
	nextID  uint64
	updates int
}

func newMemProgRepo() *memProgRepo { return &memProgRepo{rows: map[uint64]*program.Program{}} }

func (m *memProgRepo) List(context.Context, program.ListFilter) ([]program.Program, error) {
	out := make([]program.Program, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProgRepo) GetByID(_ context.Context, id uint64) (*program.Program, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, program.ErrNotFound
	}
	return p, nil
}

func (m *memProgRepo) Create(_ context.Context, p *program.Program) (uint64, error) {
	m.nextID++
	p.ID = m.nextID
	m.rows[p.ID] = p
	return p.ID, nil
}

func (m *memProgRepo) Update(_ context.Context, id uint64, patch program.Patch, now time.Time) error {
	p, ok := m.rows[id]
	if !ok {
		return program.ErrNotFound
	}
	m.updates++
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	p.UpdatedAt = now
	return nil
}

func (m *memProgRepo) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return program.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type fixture struct {
	srv      *Server
	handler  http.Handler
	sender   *memSender
	subRepo  *memSubRepo
	progRepo *memProgRepo
	db       *sqlx.DB
	mock     sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })
	db := sqlx.NewDb(rawDB, "mysql")

	loc, _ := time.LoadLocation("Europe/Berlin")
	sender := &memSender{}
	subRepo := newMemSubRepo()
	progRepo := newMemProgRepo()
	from := mailer.Address{Email: "noreply@naje.example", Name: "Naje e.V."}

	srv := New(Options{
		DB:         db,
		Authorizer: auth.Authorizer{APIToken: adminToken, JWTSecret: []byte("secret")},
		TokenTTL:   8 * time.Hour,
		Programs: program.NewService(progRepo, cacheForTest(), sender, subRepo,
			from, "https://naje.example", loc),
		Subs: subscriber.NewService(subRepo, sender, from, nil,
			"https://naje.example", loc),
		Mail:      sender,
		From:      from,
		ContactTo: "info@naje.example",
		Limiter:   ratelimit.New(time.Hour, 5),
		AppURL:    "https://naje.example",
	})

	return &fixture{
		srv:      srv,
		handler:  srv.Routes(),
		sender:   sender,
		subRepo:  subRepo,
		progRepo: progRepo,
		db:       db,
		mock:     mock,
	}
}

func (f *fixture) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func asAdmin() map[string]string {
	return map[string]string{"Authorization": "Bearer " + adminToken}
}

/*────────────────────────────── login ─────────────────────────────────────*/

func TestLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/login", `{"username":"","password":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	encoded, err := auth.HashPassword("Sommer2025!")
	require.NoError(t, err)
	accountRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "password", "created_at"}).
			AddRow(1, "admin@naje.example", encoded, time.Now())
	}
	selectQ := regexp.QuoteMeta("SELECT id, username, password, created_at FROM admin_account WHERE username = ? LIMIT 1")

	f.mock.ExpectQuery(selectQ).WithArgs("ghost@naje.example").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "created_at"}))
	rec = f.do(http.MethodPost, "/api/auth/login", `{"username":"ghost@naje.example","password":"x"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	f.mock.ExpectQuery(selectQ).WithArgs("admin@naje.example").WillReturnRows(accountRows())
	rec = f.do(http.MethodPost, "/api/auth/login", `{"username":"admin@naje.example","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.mock.ExpectQuery(selectQ).WithArgs("admin@naje.example").WillReturnRows(accountRows())
	rec = f.do(http.MethodPost, "/api/auth/login", `{"username":"admin@naje.example","password":"Sommer2025!"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := auth.Verify(resp.Token, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, "admin@naje.example", claims.Username)
	assert.Equal(t, "1", claims.Subject)
}

/*───────────────────────────── contact ────────────────────────────────────*/

func TestContact_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		body string
		want string
	}{
		{`{"name":"","email":"a@b.de","message":"hello there friend"}`, "Invalid payload"},
		{`{"name":"Maria","email":"not-an-email","message":"hello there friend"}`, "Invalid email"},
		{`{"name":"M","email":"a@b.de","message":"hello there friend"}`, "Invalid name"},
		{`{"name":"Maria","email":"a@b.de","message":"short"}`, "Invalid message"},
		{`{"name":"Maria","email":"a@b.de","message":"see http://a.de http://b.de www.c.de https://d.de ok"}`, "Too many links"},
	}
	for _, tc := range cases {
		rec := f.do(http.MethodPost, "/api/contact", tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.want)
		assert.Contains(t, rec.Body.String(), tc.want)
	}
	assert.Empty(t, f.sender.sent, "invalid submissions must not send mail")
}

func TestContact_RelayAndReceipt(t *testing.T) {
	f := newFixture(t)

	body := `{"name":"Maria Musterfrau","email":"maria@b.de","message":"Ich habe eine Frage zum Deutschkurs."}`
	rec := f.do(http.MethodPost, "/api/contact", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.sender.sent, 2)
	relay, receipt := f.sender.sent[0], f.sender.sent[1]

	assert.Equal(t, "info@naje.example", relay.To[0].Email)
	require.NotNil(t, relay.ReplyTo)
	assert.Equal(t, "maria@b.de", relay.ReplyTo.Email)
	assert.Equal(t, "Neue Kontaktanfrage – Maria Musterfrau", relay.Subject)

	assert.Equal(t, "maria@b.de", receipt.To[0].Email)
	assert.Nil(t, receipt.ReplyTo)
	assert.Contains(t, receipt.HTML, "Vielen Dank")
}

func TestContact_RateLimited(t *testing.T) {
	f := newFixture(t)

	body := `{"name":"Maria","email":"a@b.de","message":"hello there my friend"}`
	hdr := map[string]string{"X-Forwarded-For": "203.0.113.7"}
	for i := 0; i < 5; i++ {
		rec := f.do(http.MethodPost, "/api/contact", body, hdr)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}
	rec := f.do(http.MethodPost, "/api/contact", body, hdr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limited")

	// Another client keeps its own budget.
	rec = f.do(http.MethodPost, "/api/contact", body, map[string]string{"X-Forwarded-For": "198.51.100.4"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContact_SendFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.err = fmt.Errorf("provider down")

	body := `{"name":"Maria","email":"a@b.de","message":"hello there my friend"}`
	rec := f.do(http.MethodPost, "/api/contact", body, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Send failed")
}

/*──────────────────────────── newsletter ──────────────────────────────────*/

func TestNewsletter_SubscribeAndConfirm(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/newsletter", `{"email":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/newsletter", `{"email":"Maria@B.de","name":"Maria"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.sender.sent, 1)

	require.Len(t, f.subRepo.tokens, 1)
	var token string
	for tok := range f.subRepo.tokens {
		token = tok
	}

	rec = f.do(http.MethodGet, "/api/newsletter/confirm", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/newsletter/confirm?token="+token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Ihre Anmeldung wurde bestätigt")
	assert.True(t, f.subRepo.subs["maria@b.de"].Confirmed)

	// The consumed token is gone.
	rec = f.do(http.MethodGet, "/api/newsletter/confirm?token="+token, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewsletter_ListRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/newsletter", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/newsletter", "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items    []json.RawMessage `json:"items"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
}

func TestNewsletter_CSVExport(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/newsletter", `{"email":"a@b.de"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/newsletter?format=csv", "", asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=newsletter.csv", rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "email,name,subscribedAt,date,hour,weekday,confirmed", lines[0])
	assert.Len(t, lines, 2)
	assert.True(t, bytes.HasPrefix([]byte(lines[1]), []byte("a@b.de,")))
}
