package auth_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cronoplan/cronoplan-api/internal/auth"
	"github.com/cronoplan/cronoplan-api/internal/profile"
)

// MockProfileStore implements auth.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*profile.Profile)
	return record, args.Error(1)
}

func (m *MockProfileStore) Create(ctx context.Context, record *profile.Profile) (*profile.Profile, error) {
	args := m.Called(ctx, record)
	created, _ := args.Get(0).(*profile.Profile)
	return created, args.Error(1)
}

func (m *MockProfileStore) Update(ctx context.Context, id string, changes profile.Changes) (*profile.Profile, error) {
	args := m.Called(ctx, id, changes)
	updated, _ := args.Get(0).(*profile.Profile)
	return updated, args.Error(1)
}

// MockCredentialVerifier implements auth.CredentialVerifier
type MockCredentialVerifier struct {
	mock.Mock
}

func (m *MockCredentialVerifier) SignUp(ctx context.Context, email, password string, data auth.SignUpData) (*auth.ExternalIdentity, error) {
	args := m.Called(ctx, email, password, data)
	identity, _ := args.Get(0).(*auth.ExternalIdentity)
	return identity, args.Error(1)
}

func (m *MockCredentialVerifier) SignIn(ctx context.Context, email, password string) (*auth.ExternalIdentity, error) {
	args := m.Called(ctx, email, password)
	identity, _ := args.Get(0).(*auth.ExternalIdentity)
	return identity, args.Error(1)
}

// MockProviderTokenVerifier implements auth.ProviderTokenVerifier
type MockProviderTokenVerifier struct {
	mock.Mock
}

func (m *MockProviderTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.ExternalIdentity, error) {
	args := m.Called(ctx, idToken)
	identity, _ := args.Get(0).(*auth.ExternalIdentity)
	return identity, args.Error(1)
}

// MockLogger implements auth.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}
