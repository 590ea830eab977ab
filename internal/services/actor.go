package services

// Actor identifies the authenticated user performing an operation, carried
// explicitly from the HTTP layer into services instead of being read from
// ambient state. Audit entries and approval stamps come from here.
type Actor struct {
	UserID    uint
	Name      string
	Role      string
	IP        string
	UserAgent string
}
