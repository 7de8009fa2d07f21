package domain

// Application status constants, in lifecycle order.
const (
	StatusApplied            = "applied"
	StatusUnderReview        = "under_review"
	StatusInterviewScheduled = "interview_scheduled"
	StatusInterviewCompleted = "interview_completed"
	StatusAccepted           = "accepted"
	StatusRejected           = "rejected"
)

// transitions is the authoritative edge set of the application lifecycle.
// Terminal states have no outgoing edges; rejection is reachable from every
// non-terminal state.
var transitions = map[string][]string{
	StatusApplied:            {StatusUnderReview, StatusRejected},
	StatusUnderReview:        {StatusInterviewScheduled, StatusAccepted, StatusRejected},
	StatusInterviewScheduled: {StatusInterviewCompleted, StatusRejected},
	StatusInterviewCompleted: {StatusAccepted, StatusRejected},
}

// transitionRoles maps a target status to the roles allowed to move there.
// Hiring decisions belong to hiring-team actors; interview states belong to
// the orchestrator.
var transitionRoles = map[string][]string{
	StatusUnderReview:        {RoleHiring},
	StatusAccepted:           {RoleHiring},
	StatusRejected:           {RoleHiring},
	StatusInterviewScheduled: {RoleOrchestrator},
	StatusInterviewCompleted: {RoleOrchestrator},
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusInterviewScheduled,
		StatusInterviewCompleted, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are permitted.
func IsTerminalStatus(s string) bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether the edge from → to exists in the graph.
func CanTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TransitionAuthorized reports whether role may move an application to the
// target status.
func TransitionAuthorized(to, role string) bool {
	for _, r := range transitionRoles[to] {
		if r == role {
			return true
		}
	}
	return false
}

// IsHiringDecision reports whether the target status represents a hiring-team
// decision, which stamps reviewed_at.
func IsHiringDecision(to string) bool {
	return to == StatusUnderReview || to == StatusAccepted || to == StatusRejected
}
