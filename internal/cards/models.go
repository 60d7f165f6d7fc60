package cards

// Camp is a card's faction affiliation
type Camp string

const (
	CampWei Camp = "Wei"
	CampShu Camp = "Shu"
	CampWu  Camp = "Wu"
)

// Camps lists every playable faction in rule-table scan order
var Camps = []Camp{CampShu, CampWei, CampWu}

// Valid reports whether c is one of the known factions
func (c Camp) Valid() bool {
	switch c {
	case CampWei, CampShu, CampWu:
		return true
	}
	return false
}

// Role is a card's tier classification
type Role string

const (
	RoleMonarch      Role = "Monarch"
	RoleGeneral      Role = "General"
	RoleCivilOfficer Role = "CivilOfficer"
	RoleSoldier      Role = "Soldier"
)

// Roles lists every role tier, highest first
var Roles = []Role{RoleMonarch, RoleGeneral, RoleCivilOfficer, RoleSoldier}

// Valid reports whether r is one of the known role tiers
func (r Role) Valid() bool {
	switch r {
	case RoleMonarch, RoleGeneral, RoleCivilOfficer, RoleSoldier:
		return true
	}
	return false
}

// Card is an immutable historical figure; its identity is Name
type Card struct {
	Name        string `json:"name" yaml:"generalName"`
	EnglishName string `json:"english_name,omitempty" yaml:"englishName,omitempty"`
	Camp        Camp   `json:"camp" yaml:"camp"`
	Role        Role   `json:"role" yaml:"role"`
	BaseValue   int    `json:"base_value" yaml:"baseScore"`
}
