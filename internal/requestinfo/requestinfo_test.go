package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrich_ClientID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		xff  string
		want string
	}{
		{"absent header", "", "unknown"},
		{"single hop", "203.0.113.9", "203.0.113.9"},
		{"proxy chain keeps first hop", "203.0.113.9, 10.0.0.1, 10.0.0.2", "203.0.113.9"},
		{"whitespace trimmed", "  203.0.113.9 , 10.0.0.1", "203.0.113.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *Info
			h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.want, got.ClientID)
		})
	}
}

func TestFromContext_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	info := FromContext(req.Context())
	assert.Equal(t, "unknown", info.ClientID)
}

func TestParseUA(t *testing.T) {
	t.Parallel()

	const chrome = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	ua := parseUA(chrome)
	assert.Equal(t, "Chrome", ua.Browser)
	assert.Equal(t, "Desktop", ua.Device)
	assert.False(t, ua.IsBot)

	bot := parseUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, bot.IsBot)
}
