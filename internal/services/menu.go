package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

const menuCacheKey = "menu:items"

// MenuRepository описывает контракт для работы с пунктами меню.
type MenuRepository interface {
	ListMenuItems(ctx context.Context) ([]*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item models.MenuItem) (int64, error)
	UpdateMenuItem(ctx context.Context, id int64, item models.MenuItem) error
	HasChildren(ctx context.Context, id int64) (bool, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

// Cache описывает контракт кэша значений.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// MenuService отвечает за навигационное меню: построение дерева по
// эффективным правам пользователя и управление пунктами.
type MenuService struct {
	repo  MenuRepository
	cache Cache
	log   *slog.Logger
}

// NewMenuService создает новый экземпляр MenuService.
func NewMenuService(repo MenuRepository, cache Cache, log *slog.Logger) *MenuService {
	return &MenuService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// listItems возвращает все пункты меню, подставляя кэш перед базой.
func (s *MenuService) listItems(ctx context.Context) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	found, err := s.cache.Get(menuCacheKey, &items)
	if err != nil {
		s.log.Warn("failed to read menu cache", "error", err)
	}
	if found {
		return items, nil
	}

	items, err = s.repo.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(menuCacheKey, items, time.Hour); err != nil {
		s.log.Warn("failed to cache menu items", "error", err)
	}
	return items, nil
}

func (s *MenuService) invalidateCache() {
	if err := s.cache.Invalidate(menuCacheKey); err != nil {
		s.log.Warn("failed to invalidate menu cache", "error", err)
	}
}

// Tree возвращает дерево меню, отфильтрованное по правам пользователя.
// Пункт попадает в ответ, только если его разрешение есть в наборе;
// дочерний пункт без видимого родителя поднимается на верхний уровень.
func (s *MenuService) Tree(ctx context.Context, perms []string) ([]*models.MenuNode, error) {
	items, err := s.listItems(ctx)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		allowed[p] = struct{}{}
	}

	visible := make(map[int64]*models.MenuNode)
	var order []int64
	for _, item := range items {
		if _, ok := allowed[item.Permission]; !ok {
			continue
		}
		visible[item.ID] = &models.MenuNode{MenuItem: *item}
		order = append(order, item.ID)
	}

	var roots []*models.MenuNode
	for _, id := range order {
		node := visible[id]
		if node.Parent != nil {
			if parent, ok := visible[*node.Parent]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	for _, root := range roots {
		sortNodes(root.Children)
	}
	return roots, nil
}

func sortNodes(nodes []*models.MenuNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Order < nodes[j].Order
	})
}

// ListAll возвращает плоский список всех пунктов меню для суперадмина.
func (s *MenuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	return s.listItems(ctx)
}

// Create добавляет пункт меню и сбрасывает кэш.
func (s *MenuService) Create(ctx context.Context, item models.MenuItem) (int64, error) {
	id, err := s.repo.CreateMenuItem(ctx, item)
	if err != nil {
		return 0, err
	}
	s.invalidateCache()
	s.log.Info("menu item created", slog.String("permission", item.Permission))
	return id, nil
}

// Update заменяет пункт меню и сбрасывает кэш.
func (s *MenuService) Update(ctx context.Context, id int64, item models.MenuItem) error {
	err := s.repo.UpdateMenuItem(ctx, id, item)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// Delete удаляет пункт меню. Пункт с дочерними элементами удалить нельзя.
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrMenuHasChildren
	}
	err = s.repo.DeleteMenuItem(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}
