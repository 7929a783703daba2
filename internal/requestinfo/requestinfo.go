// internal/requestinfo/requestinfo.go
//
// Per-request client metadata.
//
// Context
// -------
// The contact and newsletter handlers want three best-effort facts about
// the caller: a client identifier for rate limiting, a user-agent
// fingerprint for abuse triage in the logs, and (when a MaxMind database
// is configured) a country hint.  All three are computed once per request
// by the Enrich middleware and stashed in the request context.
//
// The client identifier is the first X-Forwarded-For hop, falling back to
// the literal "unknown" when the header is absent.  It is spoofable and
// treated accordingly: deterrence, not security.
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA carries the parsed user-agent attributes that end up in logs.
type UA struct {
	Browser string
	OS      string
	Device  string // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot   bool
}

// Info is attached to the request context by Enrich.
type Info struct {
	ClientID   string // first X-Forwarded-For hop, or "unknown"
	CountryISO string // empty when no GeoIP database is loaded
	UA         UA
	Timestamp  time.Time
}

// geoReader is a singleton MaxMind handle; safe for concurrent reads,
// which is all we perform.  Nil when no database is configured.
var geoReader *geoip2.Reader

// InitGeo opens the MaxMind database at dbPath.  Call once from main();
// an error leaves geolocation disabled rather than failing startup.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{}

// FromContext returns the Info stored by Enrich, or a zero-value Info
// with ClientID "unknown" when the middleware has not run.
func FromContext(ctx context.Context) *Info {
	if v, ok := ctx.Value(ctxKey{}).(*Info); ok {
		return v
	}
	return &Info{ClientID: "unknown"}
}

// Enrich computes Info for the request and stores it in the context.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &Info{
			ClientID:  clientID(r),
			UA:        parseUA(r.UserAgent()),
			Timestamp: time.Now(),
		}
		if geoReader != nil {
			if ip := net.ParseIP(info.ClientID); ip != nil {
				if rec, err := geoReader.Country(ip); err == nil {
					info.CountryISO = rec.Country.IsoCode
				}
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, info)))
	})
}

// clientID extracts the first X-Forwarded-For value.
func clientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	return "unknown"
}

// parseUA converts a raw header into our UA struct.  The wrapper isolates
// the third-party enums so the rest of the codebase never sees them.
func parseUA(raw string) UA {
	u := surfer.Parse(raw)

	ua := UA{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}
	switch u.DeviceType {
	case surfer.DeviceComputer:
		ua.Device = "Desktop"
	case surfer.DeviceTablet:
		ua.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		ua.Device = "Mobile"
	default:
		ua.Device = "Other"
	}
	return ua
}
