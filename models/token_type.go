package models

// TokenType represents one of the platform's reward tokens. Token types are
// immutable reference data seeded by migration.
type TokenType struct {
	ID     int32  `db:"id"`
	Symbol string `db:"symbol"`
	Name   string `db:"name"`
}
