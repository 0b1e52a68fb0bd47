package model

import "context"

// User is a bot user and the turf-API session bound to them. APIToken
// is empty until the OTP login flow completes and is dropped again when
// the API answers 401.
type User struct {
	ID       int64
	TgUserID int64
	TgChatID int64
	Phone    string
	APIToken string
	Name     string
	Email    string
}

// SessionData is a snapshot of the FSM session, persisted so a bot
// restart does not dump users back to the start screen.
type SessionData struct {
	State   string
	Payload map[string]any
}

type Repo interface {
	UpsertUser(ctx context.Context, u User) (int64, error)
	GetUserByTG(ctx context.Context, tgUserID int64) (*User, error)

	SaveCredentials(ctx context.Context, tgUserID int64, phone, token string) error
	ClearCredentials(ctx context.Context, tgUserID int64) error
	UpdateProfile(ctx context.Context, tgUserID int64, name, email string) error

	LoadSession(ctx context.Context, tgUserID int64) (*SessionData, error)
	SaveSession(ctx context.Context, tgUserID int64, s SessionData) error
}
