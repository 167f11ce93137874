package persistence

import (
	"strings"
)

// sortColumns whitelists the columns a list endpoint may order by. Request
// values never reach SQL unless they match a key exactly.
type sortColumns map[string]struct{}

// sortable returns the given columns plus id and the timestamps
func sortable(columns ...string) sortColumns {
	s := sortColumns{"id": {}, "created_at": {}, "updated_at": {}}
	for _, c := range columns {
		s[c] = struct{}{}
	}
	return s
}

// column returns requested when it is whitelisted, otherwise fallback
func (s sortColumns) column(requested, fallback string) string {
	requested = strings.TrimSpace(requested)
	if _, ok := s[requested]; ok {
		return requested
	}
	return fallback
}

// descending is true unless the client explicitly asked for asc
func descending(order string) bool {
	return !strings.EqualFold(strings.TrimSpace(order), "asc")
}

var (
	MemberSortFields        = sortable("employee_number", "department", "position", "status", "hired_at")
	LeaveRequestSortFields  = sortable("start_date", "end_date", "days", "status")
	PayrollRecordSortFields = sortable("year", "month", "net", "gross", "status", "sent_at")
	DocumentSortFields      = sortable("title", "category", "status", "file_size", "doc_version", "uploaded_at")
	TaskSortFields          = sortable("title", "priority", "status", "due_date")
)
