package domain

// Actor roles
const (
	RoleCandidate = "candidate"
	RoleHiring    = "hiring"
	// RoleOrchestrator is the interview orchestrator acting on behalf of the
	// system. It is never assigned to an authenticated user.
	RoleOrchestrator = "orchestrator"
)

// Actor identifies who performs a core operation. Operations take the actor
// explicitly instead of reading ambient session state, so business rules are
// testable without a mounted auth layer.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// OrchestratorActor returns the system actor used for interview-driven
// status transitions.
func OrchestratorActor() Actor {
	return Actor{UserID: "system", Role: RoleOrchestrator}
}
