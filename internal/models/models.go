package models

// All lists every persisted model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Offer{},
		&Innovation{},
		&PilotProject{},
		&Task{},
		&Review{},
		&Comment{},
		&Reaction{},
		&Bookmark{},
	}
}
