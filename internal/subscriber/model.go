// internal/subscriber/model.go
//
// Newsletter subscription records.
//
// One row per case-folded email address.  The derived date/hour/weekday
// columns capture the *local* calendar slot of the original signup and
// are never rewritten by later re-subscriptions.  The confirmation token
// columns exist only while the row is unconfirmed and are cleared, in the
// same UPDATE that sets the flag, when the token is presented.
package subscriber

import "time"

// Subscription is the listable projection of one row.  The token columns
// are deliberately absent: they must never reach an API response, not
// even for an authenticated admin.
type Subscription struct {
	ID           uint64    `db:"id" json:"-"`
	Email        string    `db:"email" json:"email"`
	Name         *string   `db:"name" json:"name"`
	SubscribedAt time.Time `db:"subscribed_at" json:"subscribedAt"`
	Date         string    `db:"date" json:"date"`
	Hour         int       `db:"hour" json:"hour"`
	Weekday      int       `db:"weekday" json:"weekday"`
	Confirmed    bool      `db:"confirmed" json:"confirmed"`
}

// Filter narrows the admin listing.
type Filter struct {
	Page      int
	Limit     int
	Confirmed *bool  // nil means both states
	Search    string // case-insensitive email substring
	DateFrom  string // inclusive, "YYYY-MM-DD" against the derived date
	DateTo    string
}

// Normalize clamps pagination to the supported range: page ≥ 1, limit
// 1–100 with a default of 20.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}
