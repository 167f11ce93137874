package leave

import (
	"context"
	"errors"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/leave"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceService reads and maintains the yearly leave balances
type BalanceService struct {
	repos  Repositories
	tx     shared.Transactor
	logger *zap.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(repos Repositories, tx shared.Transactor, logger *zap.Logger) *BalanceService {
	return &BalanceService{repos: repos, tx: tx, logger: logger}
}

// GetBalances returns the balances of a member for a year. Employees may
// only read their own.
func (s *BalanceService) GetBalances(ctx context.Context, p identity.Principal, memberID uuid.UUID, year int) ([]BalanceView, error) {
	if memberID == uuid.Nil {
		memberID = p.MemberID
	}
	if memberID != p.MemberID {
		if err := p.Require(identity.RoleHR); err != nil {
			return nil, err
		}
	}
	if year == 0 {
		year = time.Now().Year()
	}
	balances, err := s.repos.Balances.FindForMember(ctx, memberID, year)
	if err != nil {
		return nil, err
	}
	types, err := s.repos.Types.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*leave.LeaveType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}
	views := make([]BalanceView, 0, len(balances))
	for _, b := range balances {
		v := BalanceView{
			ID:          b.ID,
			MemberID:    b.MemberID,
			LeaveTypeID: b.LeaveTypeID,
			Year:        b.Year,
			Entitled:    b.Entitled,
			Used:        b.Used,
			Pending:     b.Pending,
			Remaining:   b.Remaining(),
		}
		if t, ok := byID[b.LeaveTypeID]; ok {
			v.LeaveTypeCode = t.Code
			v.LeaveTypeName = t.Name
		}
		views = append(views, v)
	}
	return views, nil
}

// AdjustBalance sets the entitlement of a balance, creating it if missing (hr+)
func (s *BalanceService) AdjustBalance(ctx context.Context, p identity.Principal, input AdjustBalanceInput) (*leave.LeaveBalance, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	if _, err := s.repos.Members.FindByID(ctx, input.MemberID); err != nil {
		return nil, err
	}
	if _, err := s.repos.Types.FindByID(ctx, input.LeaveTypeID); err != nil {
		return nil, err
	}
	b, err := s.repos.Balances.Find(ctx, input.MemberID, input.LeaveTypeID, input.Year)
	switch {
	case err == nil:
		if err := b.SetEntitled(input.Entitled); err != nil {
			return nil, err
		}
	case errors.Is(err, shared.ErrNotFound):
		b, err = leave.NewLeaveBalance(p.TenantID, input.MemberID, input.LeaveTypeID, input.Year, input.Entitled)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if err := s.repos.Balances.Save(ctx, b); err != nil {
		return nil, err
	}
	s.logger.Info("Leave balance adjusted",
		zap.String("member_id", input.MemberID.String()),
		zap.String("leave_type_id", input.LeaveTypeID.String()),
		zap.Int("year", input.Year),
		zap.String("entitled", input.Entitled.String()),
		zap.String("by", p.UserID.String()))
	return b, nil
}

// InitializeYearBalances creates the missing balances of the caller's
// organization for year from the leave type defaults (hr+)
func (s *BalanceService) InitializeYearBalances(ctx context.Context, p identity.Principal, year int) (*InitializeResult, error) {
	if err := p.Require(identity.RoleHR); err != nil {
		return nil, err
	}
	created, err := s.initializeOrganization(ctx, p.TenantID, year)
	if err != nil {
		return nil, err
	}
	return &InitializeResult{Year: year, Organizations: 1, Created: created}, nil
}

// InitializeAllOrganizations runs the yearly initialization for every
// active organization. A failing organization is logged and skipped.
func (s *BalanceService) InitializeAllOrganizations(ctx context.Context, year int) (*InitializeResult, error) {
	orgs, err := s.repos.Organizations.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	result := &InitializeResult{Year: year}
	for _, org := range orgs {
		orgCtx := logger.WithTenantID(ctx, org.ID.String())
		created, err := s.initializeOrganization(orgCtx, org.ID, year)
		if err != nil {
			s.logger.Warn("Failed to initialize leave balances",
				zap.String("tenant_id", org.ID.String()),
				zap.Int("year", year),
				zap.Error(err))
			continue
		}
		result.Organizations++
		result.Created += created
	}
	return result, nil
}

func (s *BalanceService) initializeOrganization(ctx context.Context, tenantID uuid.UUID, year int) (int, error) {
	types, err := s.repos.Types.FindAll(ctx, true)
	if err != nil {
		return 0, err
	}
	members, err := s.repos.Members.FindActive(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, m := range members {
			for _, t := range types {
				exists, err := s.repos.Balances.ExistsFor(ctx, m.ID, t.ID, year)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				b, err := leave.NewLeaveBalance(tenantID, m.ID, t.ID, year, t.DefaultAllowance)
				if err != nil {
					return err
				}
				if err := s.repos.Balances.Save(ctx, b); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Leave balances initialized",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("year", year),
		zap.Int("created", created))
	return created, nil
}
