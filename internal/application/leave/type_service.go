package leave

import (
	"context"
	"errors"
	"strings"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TypeService manages the leave types of an organization
type TypeService struct {
	types     leave.LeaveTypeRepository
	evaluator leave.EligibilityEvaluator
	logger    *zap.Logger
}

// NewTypeService creates a new leave type service
func NewTypeService(types leave.LeaveTypeRepository, evaluator leave.EligibilityEvaluator, logger *zap.Logger) *TypeService {
	return &TypeService{types: types, evaluator: evaluator, logger: logger}
}

// CreateLeaveType creates a leave type (hr+). The code is unique per organization.
func (s *TypeService) CreateLeaveType(ctx context.Context, p identity.Principal, input CreateLeaveTypeInput) (*leave.LeaveType, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	lt, err := leave.NewLeaveType(p.TenantID, input.Name, input.Code, input.Paid, input.DefaultAllowance)
	if err != nil {
		return nil, err
	}
	lt.RequiresSeniorApproval = input.RequiresSeniorApproval
	lt.CreatedBy = &p.UserID
	if err := s.validateRule(input.EligibilityRule); err != nil {
		return nil, err
	}
	lt.EligibilityRule = strings.TrimSpace(input.EligibilityRule)

	if _, err := s.types.FindByCode(ctx, lt.Code); err == nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Leave type code already exists: "+lt.Code)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := s.types.Create(ctx, lt); err != nil {
		return nil, err
	}
	s.logger.Info("Leave type created",
		zap.String("leave_type_id", lt.ID.String()),
		zap.String("code", lt.Code),
		zap.Bool("paid", lt.Paid))
	return lt, nil
}

// UpdateLeaveType applies changes to a leave type (hr+)
func (s *TypeService) UpdateLeaveType(ctx context.Context, p identity.Principal, id uuid.UUID, update leave.LeaveTypeUpdate) (*leave.LeaveType, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if update.EligibilityRule != nil {
		if err := s.validateRule(*update.EligibilityRule); err != nil {
			return nil, err
		}
	}
	lt, err := s.types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := lt.Apply(update); err != nil {
		return nil, err
	}
	if err := s.types.Update(ctx, lt); err != nil {
		return nil, err
	}
	s.logger.Info("Leave type updated", zap.String("leave_type_id", lt.ID.String()))
	return lt, nil
}

// ListLeaveTypes returns the leave types. Inactive types are only listed for hr+.
func (s *TypeService) ListLeaveTypes(ctx context.Context, p identity.Principal, includeInactive bool) ([]*leave.LeaveType, error) {
	activeOnly := !(includeInactive && p.AtLeast(identity.RoleHR))
	return s.types.FindAll(ctx, activeOnly)
}

func (s *TypeService) validateRule(rule string) error {
	rule = strings.TrimSpace(rule)
	if rule == "" || s.evaluator == nil {
		return nil
	}
	if err := s.evaluator.Validate(rule); err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Invalid eligibility rule: "+err.Error())
	}
	return nil
}
