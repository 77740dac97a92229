package models

import "time"

type User struct {
	ID                 int64
	Username           string
	Email              string
	PassHash           []byte
	Inactive           bool
	ActivationToken    *string
	PasswordResetToken *string
}

// SessionToken is an opaque bearer token with sliding expiration: it stays
// valid while it keeps being used, measured from LastUsedAt rather than from
// issuance.
type SessionToken struct {
	Token      string
	UserID     int64
	LastUsedAt time.Time
}

// EmailMessage is the payload published to the mail queue and consumed by the
// mail_sender worker.
type EmailMessage struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Link    string `json:"link"`
}
