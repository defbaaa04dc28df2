// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/kanban/internal/app/store/audit"
)

// listItem is one audit event as the API returns it.
type listItem struct {
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"createdAt"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	UserID        string            `json:"userId,omitempty"`
	ActorID       string            `json:"actorId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events     []listItem `json:"events"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

func toItem(e audit.Event) listItem {
	it := listItem{
		ID:            e.ID.Hex(),
		CreatedAt:     e.CreatedAt,
		Category:      e.Category,
		EventType:     e.EventType,
		IP:            e.IP,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
	if e.UserID != nil {
		it.UserID = e.UserID.Hex()
	}
	if e.ActorID != nil {
		it.ActorID = e.ActorID.Hex()
	}
	return it
}

// eventTypesForCategory returns the event types recorded under category,
// or every type when category is empty. Unknown categories return nil.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventRegistered,
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
	}
	adminEvents := []string{
		audit.EventUserDeleted,
		audit.EventAdminCreated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}

func knownEventType(category, eventType string) bool {
	for _, et := range eventTypesForCategory(category) {
		if et == eventType {
			return true
		}
	}
	return false
}
