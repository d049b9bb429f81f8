package middleware

import (
	"github.com/luckynine/backend/internal/middleware"
)

// Logging is the shared request logging middleware
var Logging = middleware.Logging
