package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	MetricsByUser(ctx context.Context, userID string) (*models.UserMetrics, error)
	ListMembersWithMetrics(ctx context.Context, schoolID string) ([]models.MemberMetrics, error)
}

type profileSchoolRepository interface {
	FindByID(ctx context.Context, id string) (*models.School, error)
}

// ProfileResponse is the GET /users payload. SchoolUsers is present only
// for managers and admins who belong to a school.
type ProfileResponse struct {
	User        models.User                `json:"user"`
	Metrics     *models.UserMetrics        `json:"metrics,omitempty"`
	School      *models.School             `json:"school,omitempty"`
	SchoolUsers []models.MemberPerformance `json:"schoolUsers,omitempty"`
	View        ViewKind                   `json:"view"`
}

// UserService composes the profile-plus-metrics payload.
type UserService struct {
	users   profileUserRepository
	schools profileSchoolRepository
	logger  *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(users profileUserRepository, schools profileSchoolRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, schools: schools, logger: logger}
}

// Profile returns the caller's profile, their metrics snapshot, their
// school, and (for managers) the per-member performance rows.
func (s *UserService) Profile(ctx context.Context, principal *models.Principal) (*ProfileResponse, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	resp := &ProfileResponse{User: *user, View: RoleView(user.Role)}

	metrics, err := s.users.MetricsByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load metrics")
	}
	resp.Metrics = metrics

	if user.SchoolID == nil {
		return resp, nil
	}

	school, err := s.schools.FindByID(ctx, *user.SchoolID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	resp.School = school

	if resp.View == ViewManager {
		members, err := s.users.ListMembersWithMetrics(ctx, *user.SchoolID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school members")
		}
		performances := make([]models.MemberPerformance, 0, len(members))
		for _, m := range members {
			performances = append(performances, MemberPerformanceFrom(m))
		}
		resp.SchoolUsers = performances
	}

	return resp, nil
}
