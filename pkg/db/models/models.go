package models

// All lists every persisted model; dev SQLite mode migrates these directly.
func All() []any {
	return []any{
		&User{},
		&Basket{},
		&PlacedFruit{},
		&PetState{},
		&FruitAward{},
	}
}
