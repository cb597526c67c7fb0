package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/internal/models"
	appErrors "github.com/phishwise/phishwise-api/pkg/errors"
)

type schoolRepository interface {
	CreateWithManager(ctx context.Context, school *models.School) error
	FindByID(ctx context.Context, id string) (*models.School, error)
	FindByInviteCode(ctx context.Context, code string) (*models.School, error)
}

type schoolUserRepository interface {
	AssignSchool(ctx context.Context, userID, schoolID string) (bool, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateSchoolRequest is the payload for creating a school.
type CreateSchoolRequest struct {
	Name string `json:"name"`
}

// JoinSchoolRequest redeems an invite code.
type JoinSchoolRequest struct {
	InviteCode string `json:"inviteCode"`
}

// SchoolService handles school directory workflows.
type SchoolService struct {
	schools schoolRepository
	users   schoolUserRepository
	logger  *zap.Logger
}

// NewSchoolService creates an instance of SchoolService.
func NewSchoolService(schools schoolRepository, users schoolUserRepository, logger *zap.Logger) *SchoolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{schools: schools, users: users, logger: logger}
}

// GetOwn returns the caller's school, or nil when they have none.
func (s *SchoolService) GetOwn(ctx context.Context, principal *models.Principal) (*models.School, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !principal.HasSchool() {
		return nil, nil
	}

	school, err := s.schools.FindByID(ctx, *principal.SchoolID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school")
	}
	return school, nil
}

// Create creates a school and unconditionally promotes the creator to
// MANAGER, atomically. Fails with Conflict when the caller already belongs
// to a school.
func (s *SchoolService) Create(ctx context.Context, principal *models.Principal, req CreateSchoolRequest, meta models.RequestMeta) (*models.School, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if principal.HasSchool() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you already belong to a school")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school name is required")
	}

	code, err := generateInviteCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate invite code")
	}

	school := &models.School{
		Name:       name,
		InviteCode: code,
		CreatedBy:  principal.ID,
	}

	if err := s.schools.CreateWithManager(ctx, school); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create school")
	}

	payload, _ := json.Marshal(map[string]interface{}{"name": school.Name, "invite_code": school.InviteCode})
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principal.ID,
		Action:     models.AuditActionSchoolCreate,
		Resource:   "schools",
		ResourceID: &school.ID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record school create audit log", zap.Error(err))
	}

	return school, nil
}

// Join attaches the caller to the school owning the invite code. The code
// is trimmed and uppercased before lookup. The role is not altered.
func (s *SchoolService) Join(ctx context.Context, principal *models.Principal, req JoinSchoolRequest, meta models.RequestMeta) (*models.School, error) {
	if principal == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if principal.HasSchool() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you are already a member of a school")
	}

	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "inviteCode is required")
	}

	school, err := s.schools.FindByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invalid invite code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up invite code")
	}

	joined, err := s.users.AssignSchool(ctx, principal.ID, school.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to join school")
	}
	if !joined {
		// Lost a race against another join on the same user.
		return nil, appErrors.Clone(appErrors.ErrConflict, "you are already a member of a school")
	}

	payload, _ := json.Marshal(map[string]interface{}{"invite_code": code})
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principal.ID,
		Action:     models.AuditActionSchoolJoin,
		Resource:   "schools",
		ResourceID: &school.ID,
		NewValues:  payload,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record school join audit log", zap.Error(err))
	}

	return school, nil
}

// generateInviteCode draws 4 random bytes and renders them as 8 uppercase
// hex characters. Collisions are not checked; the unique index on
// invite_code surfaces them as insert failures.
func generateInviteCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
