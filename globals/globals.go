package globals

import (
	"context"
)

var (
	JwtSecret = []byte("change_me") // overwritten from config at startup
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const RequestIDKey ContextKey = "requestId"

var Ctx = context.Background()
