package storage

// Record is one credential entry in a vault
type Record struct {
	Title         string
	Login         string
	Secret        string
	IsFavorite    bool
	RequiresToken bool
	TokenID       string // opaque, only meaningful to the token provider
}

// Valid reports whether the record may be persisted
func (r Record) Valid() bool {
	return r.Title != ""
}

// Gated reports whether viewing the secret needs a hardware token
func (r Record) Gated() bool {
	return r.RequiresToken
}
