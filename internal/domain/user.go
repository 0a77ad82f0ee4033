package domain

import "time"

// TimeLayout is the textual timestamp format used across all sheets.
// It sorts lexicographically in chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in the sheet timestamp format.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// User is a buyer's address profile, keyed by lower-cased email.
type User struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// GoogleIdentity is the decoded payload of a Google sign-in credential.
type GoogleIdentity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
