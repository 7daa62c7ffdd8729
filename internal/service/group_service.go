package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fintrack/groupledger/internal/errs"
	"github.com/fintrack/groupledger/internal/ledger"
	"github.com/fintrack/groupledger/internal/middleware"
	"github.com/fintrack/groupledger/internal/models"
	"github.com/fintrack/groupledger/internal/permission"
	"github.com/fintrack/groupledger/internal/storage"
)

// GroupService handles group lifecycle and membership operations. Every
// mutation runs the permission guard against a fresh snapshot before any
// write; permission and invariant failures never leave partial state.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// RemoveMemberResult carries the updated group plus an advisory warning
// when the removed member left with a non-zero balance.
type RemoveMemberResult struct {
	Group   *models.Group `json:"group"`
	Warning string        `json:"warning,omitempty"`
}

// CreateGroup creates a group with the caller as its sole admin.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string) (*models.Group, error) {
	const op = "group.Create"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}
	if name == "" {
		return nil, errs.Invalid(op, "name_required")
	}

	caller, err := s.store.GetUserByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	group := models.NewGroup(name, description, models.GroupMember{
		UserID:      caller.ID,
		DisplayName: caller.DisplayName,
		PhotoURL:    caller.PhotoURL,
	}, time.Now().Unix())

	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group created", "group_id", group.ID, "created_by", callerID)
	return group, nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	const op = "group.Get"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsMember(callerID) {
		return nil, errs.Forbidden(op, groupID, permission.ReasonNotMember)
	}
	return group, nil
}

// ListUserGroups retrieves all groups where the caller is a member.
func (s *GroupService) ListUserGroups(ctx context.Context) ([]*models.Group, error) {
	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated("group.List")
	}
	return s.store.ListGroupsByMember(ctx, callerID)
}

// UpdateGroupInfo renames a group or changes its description.
// Only the creator may do this.
func (s *GroupService) UpdateGroupInfo(ctx context.Context, groupID, name, description string) (*models.Group, error) {
	const op = "group.UpdateInfo"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}
	if name == "" {
		return nil, errs.Invalid(op, "name_required")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if d := permission.CanRenameGroup(group, callerID); !d.Allowed {
		return nil, errs.Forbidden(op, groupID, d.Reason)
	}

	group.Name = name
	group.Description = description
	group.UpdatedAt = time.Now().Unix()
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group updated", "group_id", groupID, "user_id", callerID)
	return group, nil
}

// DeleteGroup removes a group. Only the creator may do this.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	const op = "group.Delete"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if d := permission.CanDeleteGroup(group, callerID); !d.Allowed {
		return errs.Forbidden(op, groupID, d.Reason)
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}

	slog.Info("group deleted", "group_id", groupID, "user_id", callerID)
	return nil
}

// AddMember invites a user by email. Any current member may invite; the
// new member joins with the member role.
func (s *GroupService) AddMember(ctx context.Context, groupID, email string) (*models.Group, error) {
	const op = "group.AddMember"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if d := permission.CanAddMember(group, callerID); !d.Allowed {
		return nil, errs.Forbidden(op, groupID, d.Reason)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	err = group.AddMember(models.GroupMember{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	}, time.Now().Unix())
	if err == models.ErrAlreadyMember {
		return nil, errs.Invalid(op, "already_member")
	}
	if err != nil {
		return nil, errs.Wrap(op, err)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("member added", "group_id", groupID, "user_id", user.ID, "invited_by", callerID)
	return group, nil
}

// RemoveMember drops a member from the roster. The caller must be an
// admin, and removing the only remaining admin is refused. The roster
// update is a single atomic store write; the last-admin check re-runs
// inside it against current data.
//
// Removal succeeds even when the member still has a non-zero balance;
// that case is reported back as a warning, not an error.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) (*RemoveMemberResult, error) {
	const op = "group.RemoveMember"

	callerID := middleware.GetUserID(ctx)
	if callerID == "" {
		return nil, errs.Unauthenticated(op)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if d := permission.CanRemoveMember(group, callerID, userID); !d.Allowed {
		if d.Reason == permission.ReasonLastAdmin {
			return nil, errs.Invariant(op, groupID, d.Reason)
		}
		return nil, errs.Forbidden(op, groupID, d.Reason)
	}

	// Advisory only: compute the departing member's balance before the
	// write so the caller can surface a data-consistency warning.
	var warning string
	if expenses, err := s.store.ListExpensesByGroup(ctx, groupID); err == nil {
		if balance := ledger.ComputeBalances(expenses)[userID]; balance != 0 {
			warning = "member removed with a non-zero balance"
			slog.Warn("member removed with outstanding balance",
				"group_id", groupID,
				"user_id", userID,
				"balance", balance,
			)
		}
	}

	updated, err := s.store.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("member removed", "group_id", groupID, "user_id", userID, "removed_by", callerID)
	return &RemoveMemberResult{Group: updated, Warning: warning}, nil
}
