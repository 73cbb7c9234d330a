package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

const (
	tenantID  = int64(1)
	serviceID = int64(10)
)

func newService() (*Service, *memory.Store) {
	store := memory.NewStore()
	store.AddService(domain.Service{ID: serviceID, TenantID: tenantID, Name: "Haircut", DurationMinutes: 60, IsActive: true})
	return NewService(store, store, logger.Nop()), store
}

func TestService_GetDefaults(t *testing.T) {
	s, _ := newService()

	resp, err := s.GetWithHierarchy(context.Background(), &models.GetConfigRequest{TenantID: tenantID})
	require.NoError(t, err)
	assert.Equal(t, models.LevelDefault, resp.Level)
	assert.Equal(t, domain.DefaultGranularityMinutes, resp.GranularityMinutes)
	assert.Zero(t, resp.AdvanceBookingDays)
	assert.Nil(t, resp.CreatedAt)
}

func TestService_Hierarchy(t *testing.T) {
	s, _ := newService()

	_, err := s.Upsert(context.Background(), &models.UpdateConfigRequest{TenantID: tenantID, GranularityMinutes: 15, AdvanceBookingDays: 30})
	require.NoError(t, err)

	resp, err := s.GetWithHierarchy(context.Background(), &models.GetConfigRequest{TenantID: tenantID, ServiceID: ptr.Ptr(serviceID)})
	require.NoError(t, err)
	assert.Equal(t, models.LevelTenant, resp.Level)
	assert.Equal(t, 15, resp.GranularityMinutes)

	_, err = s.Upsert(context.Background(), &models.UpdateConfigRequest{TenantID: tenantID, ServiceID: ptr.Ptr(serviceID), GranularityMinutes: 45})
	require.NoError(t, err)

	resp, err = s.GetWithHierarchy(context.Background(), &models.GetConfigRequest{TenantID: tenantID, ServiceID: ptr.Ptr(serviceID)})
	require.NoError(t, err)
	assert.Equal(t, models.LevelService, resp.Level)
	assert.Equal(t, 45, resp.GranularityMinutes)
	assert.Equal(t, serviceID, *resp.ServiceID)

	// Повторный Upsert обновляет ту же запись
	updated, err := s.Upsert(context.Background(), &models.UpdateConfigRequest{TenantID: tenantID, ServiceID: ptr.Ptr(serviceID), GranularityMinutes: 60})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, updated.ID)
	assert.Equal(t, 60, updated.GranularityMinutes)
}

func TestService_UpsertValidation(t *testing.T) {
	s, _ := newService()

	tests := map[string]*models.UpdateConfigRequest{
		"no tenant":          {GranularityMinutes: 30},
		"granularity low":    {TenantID: tenantID, GranularityMinutes: 1},
		"granularity high":   {TenantID: tenantID, GranularityMinutes: 241},
		"negative advance":   {TenantID: tenantID, GranularityMinutes: 30, AdvanceBookingDays: -1},
		"advance too far":    {TenantID: tenantID, GranularityMinutes: 30, AdvanceBookingDays: 366},
		"notice too long":    {TenantID: tenantID, GranularityMinutes: 30, MinBookingNoticeMinutes: 10081},
		"non-positive scope": {TenantID: tenantID, ServiceID: ptr.Ptr(int64(0)), GranularityMinutes: 30},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Upsert(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestService_UpsertUnknownService(t *testing.T) {
	s, _ := newService()

	_, err := s.Upsert(context.Background(), &models.UpdateConfigRequest{TenantID: tenantID, ServiceID: ptr.Ptr(int64(99)), GranularityMinutes: 30})
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestService_RepositoryUnavailable(t *testing.T) {
	s, store := newService()
	store.FailOn("GetConfigWithHierarchy", errors.New("connection reset"))

	_, err := s.GetWithHierarchy(context.Background(), &models.GetConfigRequest{TenantID: tenantID})
	assert.ErrorIs(t, err, domain.ErrRepositoryUnavailable)
}
