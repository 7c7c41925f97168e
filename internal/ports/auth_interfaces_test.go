package ports_test

import (
	mocks "github.com/beblocky/dashboard/internal/mocks/auth"
	"github.com/beblocky/dashboard/internal/ports"
)

// Compile-time conformance of the hand-written doubles.
var (
	_ ports.AuthProvider     = (*mocks.MockAuthProvider)(nil)
	_ ports.SessionStore     = (*mocks.MemorySessionStore)(nil)
	_ ports.IdentityProvider = (*mocks.StaticIdentityProvider)(nil)
	_ ports.UserStore        = (*mocks.MemoryUserStore)(nil)
)
