package controllers

import (
	"context"
	"sync"

	"github.com/fsdevblog/qrshort/internal/models"
	"github.com/fsdevblog/qrshort/internal/resolver"
	"github.com/fsdevblog/qrshort/internal/services"

	"github.com/stretchr/testify/mock"
)

type orchestratorMock struct {
	mock.Mock

	mu      sync.Mutex
	tracked []services.ScanRequest
}

func (m *orchestratorMock) Resolve(ctx context.Context, code string) (*resolver.Resolution, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*resolver.Resolution), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *orchestratorMock) ScheduleTrack(_ *resolver.Resolution, req services.ScanRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked = append(m.tracked, req)
}

func (m *orchestratorMock) trackedRequests() []services.ScanRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]services.ScanRequest, len(m.tracked))
	copy(out, m.tracked)
	return out
}

type linkManagerMock struct {
	mock.Mock
}

func (m *linkManagerMock) Create(ctx context.Context, args services.CreateLinkArgs) (*models.ShortLink, error) {
	called := m.Called(ctx, args)
	if called.Get(0) == nil {
		return nil, called.Error(1) //nolint:wrapcheck,errcheck
	}
	return called.Get(0).(*models.ShortLink), called.Error(1) //nolint:wrapcheck,errcheck
}

func (m *linkManagerMock) GetByCode(ctx context.Context, code string) (*models.ShortLink, error) {
	called := m.Called(ctx, code)
	if called.Get(0) == nil {
		return nil, called.Error(1) //nolint:wrapcheck,errcheck
	}
	return called.Get(0).(*models.ShortLink), called.Error(1) //nolint:wrapcheck,errcheck
}

func (m *linkManagerMock) UpdateDestination(ctx context.Context, code string, destination string) (*models.ShortLink, error) {
	called := m.Called(ctx, code, destination)
	if called.Get(0) == nil {
		return nil, called.Error(1) //nolint:wrapcheck,errcheck
	}
	return called.Get(0).(*models.ShortLink), called.Error(1) //nolint:wrapcheck,errcheck
}

func (m *linkManagerMock) UpdateStatus(ctx context.Context, code string, status models.LinkStatus) (*models.ShortLink, error) {
	called := m.Called(ctx, code, status)
	if called.Get(0) == nil {
		return nil, called.Error(1) //nolint:wrapcheck,errcheck
	}
	return called.Get(0).(*models.ShortLink), called.Error(1) //nolint:wrapcheck,errcheck
}

func (m *linkManagerMock) GetAllByOwnerID(ctx context.Context, ownerID string) ([]models.ShortLink, error) {
	called := m.Called(ctx, ownerID)
	if called.Get(0) == nil {
		return nil, called.Error(1) //nolint:wrapcheck,errcheck
	}
	return called.Get(0).([]models.ShortLink), called.Error(1) //nolint:wrapcheck,errcheck
}

type scanCounterMock struct {
	mock.Mock
}

func (m *scanCounterMock) CountByCode(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}

type pingerMock struct {
	mock.Mock
}

func (m *pingerMock) CheckConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0) //nolint:wrapcheck,errcheck
}
