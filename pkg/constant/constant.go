package constant

const (
	DefaultUserRole = "user"
	AdminRole       = "admin"

	StatusPending = "pending"
	StatusActive  = "active"
)
