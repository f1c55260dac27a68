package database

// User is a row of the usuarios table. A row exists only for registered
// Telegram users; Registered is always true once written.
type User struct {
	ID         int64  `db:"id"`
	UserID     int64  `db:"user_id"`
	FirstName  string `db:"first_name"`
	Registered bool   `db:"registered"`
}
