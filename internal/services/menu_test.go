package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/crm-backoffice/internal/lib/sl"
	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/services"
)

// Мок для MenuRepository
type MenuRepoMock struct {
	mock.Mock
}

func (m *MenuRepoMock) ListMenuItems(ctx context.Context) ([]*models.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MenuItem), args.Error(1)
}

func (m *MenuRepoMock) CreateMenuItem(ctx context.Context, item models.MenuItem) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MenuRepoMock) UpdateMenuItem(ctx context.Context, id int64, item models.MenuItem) error {
	args := m.Called(ctx, id, item)
	return args.Error(0)
}

func (m *MenuRepoMock) HasChildren(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MenuRepoMock) DeleteMenuItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Мок для Cache
type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newCacheMiss() *CacheMock {
	cache := new(CacheMock)
	cache.On("Get", mock.Anything, mock.Anything).Return(false, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)
	return cache
}

func ptrInt64(v int64) *int64 { return &v }

func TestMenuService_TreeFiltersByPermissions(t *testing.T) {
	items := []*models.MenuItem{
		{ID: 1, Title: "Дашборд", Permission: "view_dashboard", Order: 1},
		{ID: 2, Title: "Отчеты", Permission: "view_reports", Order: 2},
		{ID: 3, Title: "Продажи", Permission: "view_sales_reports", Order: 1, Parent: ptrInt64(2)},
		{ID: 4, Title: "Пользователи", Permission: "manage_users", Order: 3},
	}

	repo := new(MenuRepoMock)
	repo.On("ListMenuItems", mock.Anything).Return(items, nil).Once()

	svc := services.NewMenuService(repo, newCacheMiss(), sl.DiscardLogger())
	tree, err := svc.Tree(context.Background(),
		[]string{"view_dashboard", "view_reports", "view_sales_reports"})
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, "Дашборд", tree[0].Title)
	assert.Equal(t, "Отчеты", tree[1].Title)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Продажи", tree[1].Children[0].Title)
}

func TestMenuService_TreeOrphanChildBecomesRoot(t *testing.T) {
	items := []*models.MenuItem{
		{ID: 2, Title: "Отчеты", Permission: "view_reports", Order: 2},
		{ID: 3, Title: "Продажи", Permission: "view_sales_reports", Order: 1, Parent: ptrInt64(2)},
	}

	repo := new(MenuRepoMock)
	repo.On("ListMenuItems", mock.Anything).Return(items, nil).Once()

	svc := services.NewMenuService(repo, newCacheMiss(), sl.DiscardLogger())
	// Родительский пункт не разрешен — дочерний поднимается на верхний уровень.
	tree, err := svc.Tree(context.Background(), []string{"view_sales_reports"})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Продажи", tree[0].Title)
	assert.Empty(t, tree[0].Children)
}

func TestMenuService_TreeEmptyPermissions(t *testing.T) {
	repo := new(MenuRepoMock)
	repo.On("ListMenuItems", mock.Anything).Return([]*models.MenuItem{
		{ID: 1, Title: "Дашборд", Permission: "view_dashboard", Order: 1},
	}, nil).Once()

	svc := services.NewMenuService(repo, newCacheMiss(), sl.DiscardLogger())
	tree, err := svc.Tree(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestMenuService_DeleteGuardsChildren(t *testing.T) {
	t.Run("пункт с дочерними элементами не удаляется", func(t *testing.T) {
		repo := new(MenuRepoMock)
		repo.On("HasChildren", mock.Anything, int64(2)).Return(true, nil).Once()

		svc := services.NewMenuService(repo, newCacheMiss(), sl.DiscardLogger())
		err := svc.Delete(context.Background(), 2)
		assert.ErrorIs(t, err, services.ErrMenuHasChildren)
		repo.AssertNotCalled(t, "DeleteMenuItem", mock.Anything, mock.Anything)
	})

	t.Run("листовой пункт удаляется со сбросом кэша", func(t *testing.T) {
		repo := new(MenuRepoMock)
		cache := newCacheMiss()
		repo.On("HasChildren", mock.Anything, int64(3)).Return(false, nil).Once()
		repo.On("DeleteMenuItem", mock.Anything, int64(3)).Return(nil).Once()

		svc := services.NewMenuService(repo, cache, sl.DiscardLogger())
		require.NoError(t, svc.Delete(context.Background(), 3))
		cache.AssertCalled(t, "Invalidate", "menu:items")
	})
}
