package entity

// SourceDocument is an uploaded bill: raw bytes plus the declared filename.
// It is never mutated after creation.
type SourceDocument struct {
	Filename string `json:"filename"`
	Format   string `json:"format"` // constants.PDF | constants.IMAGE
	Body     []byte `json:"-"`
}
