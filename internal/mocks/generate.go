// Package mocks provides mock implementations for testing the dashboard auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the
// identity provider and user store interfaces consumed by the session resolver.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	idp := mocks.NewMockIdentityProvider(ctrl)
//	idp.EXPECT().VerifyToken(gomock.Any(), "tok").Return(identity, nil)
package mocks

// Generate mocks for IdentityProvider and UserStore from internal/ports.
// This creates MockIdentityProvider (VerifyToken) and MockUserStore (FetchProfile).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/beblocky/dashboard/internal/ports IdentityProvider,UserStore
