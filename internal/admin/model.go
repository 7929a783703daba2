package admin

import "time"

// Account mirrors one row in the `admin_account` table.  Password holds
// the self-describing PBKDF2 record, never plaintext.  Accounts are
// created only by the offline bootstrap CLI; the API can merely verify
// credentials against them.
type Account struct {
	ID        uint64    `db:"id"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}
