package models

// All returns every model in dependency order for migration.
func All() []any {
	return []any{
		&User{},
		&Event{},
		&EventRegistration{},
		&Accommodation{},
		&AccommodationImage{},
		&AccommodationFavorite{},
	}
}
