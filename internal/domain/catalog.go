package domain

// Status is one entry of the externally seeded lifecycle catalog.
type Status struct {
	ID          int64
	Name        string
	Description string
}

// Priority is one entry of the urgency catalog. Level drives overdue and
// urgency computation, not the transition engine.
type Priority struct {
	ID    int64
	Name  string
	Level int
}
