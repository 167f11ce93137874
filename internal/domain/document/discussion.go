package document

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DiscussionState tells whose reply a document thread is waiting for
type DiscussionState string

const (
	DiscussionNone             DiscussionState = "none"
	DiscussionAwaitingEmployee DiscussionState = "awaiting_employee"
	DiscussionAwaitingAdmin    DiscussionState = "awaiting_admin"
)

// Discussion is the inferred state of a document thread
type Discussion struct {
	State          DiscussionState
	LastEmployeeAt *time.Time
	LastAdminAt    *time.Time
	// LastCommentAt is the time of the last non-system comment
	LastCommentAt *time.Time
	Waiting       time.Duration
}

// IsPending reports whether someone owes a reply
func (d Discussion) IsPending() bool {
	return d.State != DiscussionNone
}

// AwaitingFor reports whether the thread waits on the given side
func (d Discussion) AwaitingFor(employee bool) bool {
	if employee {
		return d.State == DiscussionAwaitingEmployee
	}
	return d.State == DiscussionAwaitingAdmin
}

// InferDiscussion derives the thread state from its comments. System
// comments never count. Comments by the document owner are employee
// replies, everyone else is the admin side. The admin side wins unless a
// strictly later employee reply exists.
func InferDiscussion(ownerUserID uuid.UUID, comments []Comment, now time.Time) Discussion {
	sorted := make([]Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var out Discussion
	for i := range sorted {
		c := sorted[i]
		if c.IsSystem() {
			continue
		}
		at := c.CreatedAt
		if c.AuthorUserID == ownerUserID {
			out.LastEmployeeAt = &at
		} else {
			out.LastAdminAt = &at
		}
		out.LastCommentAt = &at
	}

	switch {
	case out.LastAdminAt != nil && (out.LastEmployeeAt == nil || !out.LastEmployeeAt.After(*out.LastAdminAt)):
		out.State = DiscussionAwaitingEmployee
	case out.LastEmployeeAt != nil:
		out.State = DiscussionAwaitingAdmin
	default:
		out.State = DiscussionNone
		return out
	}

	if waited := now.Sub(*out.LastCommentAt); waited > 0 {
		out.Waiting = waited
	}
	return out
}
