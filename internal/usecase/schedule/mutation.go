package schedule

import (
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
)

// MutationService owns every write to schedule templates. Each write passes
// validation, authorization and the conflict check before it reaches storage.
type MutationService struct {
	repo     domain.Repository
	detector *domain.ConflictDetector
	audit    Auditor
	cache    cache.ScheduleCache
	validate *validator.Validate
	tz       *timezone.Resolver
}

func NewMutationService(
	repo domain.Repository,
	detector *domain.ConflictDetector,
	audit Auditor,
	scheduleCache cache.ScheduleCache,
	validate *validator.Validate,
	tz *timezone.Resolver,
) *MutationService {
	if scheduleCache == nil {
		scheduleCache = cache.Noop{}
	}
	return &MutationService{
		repo:     repo,
		detector: detector,
		audit:    audit,
		cache:    scheduleCache,
		validate: validate,
		tz:       tz,
	}
}
