package models

import "errors"

// Role is a member's role within a group.
type Role string

const (
	// RoleAdmin grants elevated permissions: member removal and
	// edit/delete of any expense in the group.
	RoleAdmin Role = "admin"

	// RoleMember is the default role for invited members.
	RoleMember Role = "member"
)

// Roster mutation errors.
var (
	ErrAlreadyMember  = errors.New("user is already a member of the group")
	ErrMemberNotFound = errors.New("user is not a member of the group")
	ErrLastAdmin      = errors.New("cannot remove the last admin of the group")
)

// GroupMember is one entry in a group's member roster.
type GroupMember struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Role        Role   `json:"role"`
	JoinedAt    int64  `json:"joinedAt"`
}

// Group is a shared-expense circle.
//
// MemberIDs and Members describe the same set of users: MemberIDs exists for
// fast membership queries, Members carries the denormalized roster details.
// The two are only ever mutated together through AddMember and RemoveMember,
// so they cannot diverge. Every group has at least one admin; the creator is
// the first.
type Group struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	MemberIDs   []string      `json:"memberIds"`
	Members     []GroupMember `json:"members"`
	CreatedBy   string        `json:"createdBy"`
	CreatedAt   int64         `json:"createdAt"`
	UpdatedAt   int64         `json:"updatedAt"`
}

// NewGroup creates a group with the creator as its sole admin.
func NewGroup(name, description string, creator GroupMember, now int64) *Group {
	creator.Role = RoleAdmin
	creator.JoinedAt = now
	return &Group{
		Name:        name,
		Description: description,
		MemberIDs:   []string{creator.UserID},
		Members:     []GroupMember{creator},
		CreatedBy:   creator.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsMember reports whether userID is currently on the roster.
func (g *Group) IsMember(userID string) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Member returns the roster entry for userID, or nil if not a member.
func (g *Group) Member(userID string) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

// IsAdmin reports whether userID holds the admin role.
func (g *Group) IsAdmin(userID string) bool {
	m := g.Member(userID)
	return m != nil && m.Role == RoleAdmin
}

// AdminCount returns the number of admins on the roster.
func (g *Group) AdminCount() int {
	n := 0
	for i := range g.Members {
		if g.Members[i].Role == RoleAdmin {
			n++
		}
	}
	return n
}

// AddMember appends a new member to both roster collections.
// The member joins with RoleMember regardless of the role on the argument.
func (g *Group) AddMember(m GroupMember, now int64) error {
	if g.IsMember(m.UserID) {
		return ErrAlreadyMember
	}
	m.Role = RoleMember
	m.JoinedAt = now
	g.MemberIDs = append(g.MemberIDs, m.UserID)
	g.Members = append(g.Members, m)
	g.UpdatedAt = now
	return nil
}

// RemoveMember drops userID from both roster collections.
// Removing the only remaining admin is refused to protect the
// at-least-one-admin invariant.
func (g *Group) RemoveMember(userID string, now int64) error {
	target := g.Member(userID)
	if target == nil {
		return ErrMemberNotFound
	}
	if target.Role == RoleAdmin && g.AdminCount() <= 1 {
		return ErrLastAdmin
	}

	ids := g.MemberIDs[:0]
	for _, id := range g.MemberIDs {
		if id != userID {
			ids = append(ids, id)
		}
	}
	g.MemberIDs = ids

	members := g.Members[:0]
	for _, m := range g.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	g.Members = members
	g.UpdatedAt = now
	return nil
}
