package media

// Asset describes an imported piece of source media. Assets are
// immutable once registered; clips reference them read-only.
type Asset struct {
	ID              string
	Name            string
	SourceHandle    string // opaque handle owned by the collaborator layer (a file path in production)
	DurationSeconds float64
	Width           int
	Height          int
}
