package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/crm-backoffice/internal/models"
	"github.com/magabrotheeeer/crm-backoffice/internal/storage/repository"
)

// PlanRepository описывает контракт для работы с тарифными планами.
type PlanRepository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (int64, error)
	UpdatePlan(ctx context.Context, id int64, plan models.Plan) (*models.Plan, error)
	DeletePlan(ctx context.Context, id int64) error
}

// PlanService отвечает за управление тарифными планами.
type PlanService struct {
	repo     PlanRepository
	activity ActivityLogger
	log      *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, activity ActivityLogger, log *slog.Logger) *PlanService {
	return &PlanService{
		repo:     repo,
		activity: activity,
		log:      log,
	}
}

func (s *PlanService) logActivity(ctx context.Context, entry models.ActivityLog) {
	if err := s.activity.InsertActivityLog(ctx, entry); err != nil {
		s.log.Warn("failed to record activity log", "error", err)
	}
}

// List возвращает все планы по возрастанию цены.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// Create сохраняет новый план и фиксирует действие в журнале.
func (s *PlanService) Create(ctx context.Context, actorID int64, plan models.Plan) (int64, error) {
	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return 0, err
	}
	s.log.Info("plan created", slog.String("identifier", plan.Identifier))
	s.logActivity(ctx, models.ActivityLog{
		ActorID: actorID,
		Action:  models.ActionPlanCreated,
		Details: fmt.Sprintf("created plan %s", plan.Identifier),
	})
	return id, nil
}

// Update заменяет план целиком и фиксирует действие в журнале.
// Изменение прав плана влияет только на токены, выданные после него.
func (s *PlanService) Update(ctx context.Context, actorID, id int64, plan models.Plan) (*models.Plan, error) {
	updated, err := s.repo.UpdatePlan(ctx, id, plan)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("plan updated", slog.String("identifier", updated.Identifier))
	s.logActivity(ctx, models.ActivityLog{
		ActorID: actorID,
		Action:  models.ActionPlanUpdated,
		Details: fmt.Sprintf("updated plan %s", updated.Identifier),
	})
	return updated, nil
}

// Delete удаляет план. Пользователи с этим планом сохраняют его
// идентификатор и при следующем входе получают пустые права плана.
func (s *PlanService) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeletePlan(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrPlanNotFound
	}
	return err
}
