package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tiplinehq/tipline/internal/mock"
	"github.com/tiplinehq/tipline/models"
)

type fakeSource struct {
	tenants []models.Tenant
	err     error
}

func (f *fakeSource) ListTenants(_ context.Context) ([]models.Tenant, error) {
	return f.tenants, f.err
}

func TestCache_GetAndByHostname(t *testing.T) {
	source := &fakeSource{tenants: []models.Tenant{
		{ID: 1, Name: "root", Hostname: "tips.example.org", MaximumFilesize: 30},
		{ID: 2, Name: "ngo", Hostname: "Leaks.NGO.example"},
	}}

	cache, err := NewCache(context.Background(), source)
	require.NoError(t, err)

	got, err := cache.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "ngo", got.Name)

	_, err = cache.Get(99)
	assert.ErrorIs(t, err, ErrTenantNotFound)

	// hostname match is case-insensitive and ignores the port
	got, err = cache.ByHostname("leaks.ngo.example:8443")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	root, err := cache.Root()
	require.NoError(t, err)
	assert.Equal(t, int64(30), root.MaximumFilesize)
}

func TestCache_Reload(t *testing.T) {
	source := &fakeSource{tenants: []models.Tenant{{ID: 1, Name: "root"}}}

	cache, err := NewCache(context.Background(), source)
	require.NoError(t, err)

	_, err = cache.Get(2)
	require.ErrorIs(t, err, ErrTenantNotFound)

	source.tenants = append(source.tenants, models.Tenant{ID: 2, Name: "added"})
	require.NoError(t, cache.Reload(context.Background()))

	got, err := cache.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "added", got.Name)
}

func TestCache_InitialLoadFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}

	_, err := NewCache(context.Background(), source)
	assert.Error(t, err)
}

func TestCache_ReloadFailureKeepsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mock.NewMockSource(ctrl)

	gomock.InOrder(
		source.EXPECT().ListTenants(gomock.Any()).Return([]models.Tenant{{ID: 1, Name: "root"}}, nil),
		source.EXPECT().ListTenants(gomock.Any()).Return(nil, errors.New("connection refused")),
	)

	cache, err := NewCache(context.Background(), source)
	require.NoError(t, err)

	require.Error(t, cache.Reload(context.Background()))

	// the previous snapshot stays serveable
	got, err := cache.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "root", got.Name)
}
