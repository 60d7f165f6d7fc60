package cards

// createTestCards returns a small catalog-shaped roster for unit tests
func createTestCards() []Card {
	return []Card{
		{Name: "Mon", Camp: CampWei, Role: RoleMonarch, BaseValue: 10},
		{Name: "Off", Camp: CampWei, Role: RoleCivilOfficer, BaseValue: 7},
		{Name: "Sol1", Camp: CampWei, Role: RoleSoldier, BaseValue: 2},
		{Name: "Sol2", Camp: CampWei, Role: RoleSoldier, BaseValue: 2},
		{Name: "Sol3", Camp: CampWei, Role: RoleSoldier, BaseValue: 2},
		{Name: "Gen", Camp: CampShu, Role: RoleGeneral, BaseValue: 8},
	}
}
