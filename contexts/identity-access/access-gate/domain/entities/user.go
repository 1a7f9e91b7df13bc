package entities

import "time"

// UserLevel is the ordinal trust level of a caller. Ordering matters:
// comparisons rely on anonymous < registered < affiliate < special.
type UserLevel int

const (
	LevelAnonymous UserLevel = iota
	LevelRegistered
	LevelAffiliate
	LevelSpecial
)

func (l UserLevel) String() string {
	switch l {
	case LevelRegistered:
		return "registered"
	case LevelAffiliate:
		return "affiliate"
	case LevelSpecial:
		return "special"
	default:
		return "anonymous"
	}
}

// ParseUserLevel maps the persisted level name back to its ordinal.
// Unknown values degrade to anonymous rather than failing the read.
func ParseUserLevel(raw string) UserLevel {
	switch raw {
	case "registered":
		return LevelRegistered
	case "affiliate":
		return LevelAffiliate
	case "special":
		return LevelSpecial
	default:
		return LevelAnonymous
	}
}

type User struct {
	UserID          string
	Email           string
	Username        string
	FullName        string
	Level           UserLevel
	IsVerified      bool // legacy flag, kept for compatibility; affiliation rule includes it
	IsActive        bool
	IsSuperuser     bool
	ReputationScore int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAffiliate reports affiliate-or-higher standing. The superuser and legacy
// verified flags both promote into affiliation.
func (u User) IsAffiliate() bool {
	return u.Level >= LevelAffiliate || u.IsSuperuser || u.IsVerified
}

func (u User) IsRegistered() bool {
	return u.Level >= LevelRegistered || u.IsSuperuser
}

// Capabilities is the effective capability set derived from a user record.
// An anonymous caller holds the zero value.
type Capabilities struct {
	CanViewPrivate bool
	CanParticipate bool
	CanVote        bool
	CanModerate    bool
}
