package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type dashboardUserRepository interface {
	ListMembersWithMetrics(ctx context.Context, schoolID string) ([]models.MemberMetrics, error)
}

type dashboardSchoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

// DashboardService composes the manager school overview, with Redis-backed
// caching bounded by the configured TTL.
type DashboardService struct {
	users    dashboardUserRepository
	schools  dashboardSchoolRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(users dashboardUserRepository, schools dashboardSchoolRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{users: users, schools: schools, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func schoolCacheKey(schoolID string) string {
	return fmt.Sprintf("dash:school:%s", schoolID)
}

// Overview returns the school rollup with per-member performance rows and
// reports whether the cache served it. Managers and admins only.
func (s *DashboardService) Overview(ctx context.Context, principal *models.Principal) (*models.SchoolOverview, bool, error) {
	if principal == nil {
		return nil, false, appErrors.ErrUnauthorized
	}
	if RoleView(principal.Role) != ViewManager {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "manager role required")
	}
	if !principal.HasSchool() {
		return nil, false, appErrors.Clone(appErrors.ErrConflict, "join or create a school first")
	}

	key := schoolCacheKey(*principal.SchoolID)
	var cached models.SchoolOverview
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	overview, err := s.compose(ctx, *principal.SchoolID)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, key, overview, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache school overview", zap.Error(err))
	}

	return overview, false, nil
}

// InvalidateSchool drops the cached overview after membership or dispatch
// changes.
func (s *DashboardService) InvalidateSchool(ctx context.Context, schoolID string) {
	if err := s.cache.Invalidate(ctx, schoolCacheKey(schoolID)); err != nil {
		s.logger.Warn("failed to invalidate school overview cache", zap.String("school_id", schoolID), zap.Error(err))
	}
}

func (s *DashboardService) compose(ctx context.Context, schoolID string) (*models.SchoolOverview, error) {
	school, err := s.schools.FindByID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "school not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}

	members, err := s.users.ListMembersWithMetrics(ctx, schoolID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school members")
	}

	performances := make([]models.MemberPerformance, 0, len(members))
	for _, m := range members {
		performances = append(performances, MemberPerformanceFrom(m))
	}

	return &models.SchoolOverview{
		School:  *school,
		Stats:   SchoolRollup(members),
		Members: performances,
	}, nil
}
