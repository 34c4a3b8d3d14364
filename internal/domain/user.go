package domain

import (
	"time"
)

// User is a registered player. Username is the unique key.
//
// NOTE: Password is stored and compared as-is. There is no server-side trust
// boundary in this system, but do not reuse this type anywhere that needs
// real credential handling.
type User struct {
	Username     string
	Email        string
	Password     string
	Achievements AchievementRecord
	CreatedAt    time.Time
}
