package launch

// State is a step of one launch, in execution order.
type State int

const (
	Idle State = iota
	OwnershipAcquired
	DirectoryChanged
	EnvironmentApplied
	ChildSpawned
	ChildRunning
	ChildExited
	AuthSessionClosed
	EnvironmentReset
	OwnershipReleased
	AccountingClosed
)

var stateNames = [...]string{
	Idle:               "idle",
	OwnershipAcquired:  "ownership-acquired",
	DirectoryChanged:   "directory-changed",
	EnvironmentApplied: "environment-applied",
	ChildSpawned:       "child-spawned",
	ChildRunning:       "child-running",
	ChildExited:        "child-exited",
	AuthSessionClosed:  "auth-session-closed",
	EnvironmentReset:   "environment-reset",
	OwnershipReleased:  "ownership-released",
	AccountingClosed:   "accounting-closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
