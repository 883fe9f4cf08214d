package model

import "time"

type MemberTier string

const (
	TierFree    MemberTier = "Free"
	TierPremium MemberTier = "Premium"
)

// GuestID is shared by every guest session on this device.
const GuestID = "guest_user"

type Identity struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	Guest    bool       `json:"is_guest"`
	JoinedAt time.Time  `json:"joined_at"`
	Tier     MemberTier `json:"member_tier"`
}
