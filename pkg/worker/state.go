package worker

// State tracks the loop lifecycle, mostly for observability and tests.
type State int32

const (
    StateStarting State = iota
    StateRunning
    StateDraining
    StateTerminated
)

func (s State) String() string {
    switch s {
    case StateStarting:
        return "starting"
    case StateRunning:
        return "running"
    case StateDraining:
        return "draining"
    case StateTerminated:
        return "terminated"
    default:
        return "unknown"
    }
}
