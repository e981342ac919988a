package multiplayerdomain

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	GameStatusScheduled     GameStatus = "scheduled"
	GameStatusIdleNewGame   GameStatus = "idle_newgame"
	GameStatusInProgress    GameStatus = "inprogress"
	GameStatusCompleted     GameStatus = "completed"
	GameStatusManuallyEnded GameStatus = "manually_ended"
	GameStatusUnknown       GameStatus = "unknown"
)

var gameStatusLabels = map[GameStatus]string{
	GameStatusScheduled:     "Scheduled",
	GameStatusIdleNewGame:   "Idle: Awaiting first lobby",
	GameStatusInProgress:    "In Progress",
	GameStatusCompleted:     "Completed",
	GameStatusManuallyEnded: "Manually Ended",
	GameStatusUnknown:       "Unknown",
}

// ParseGameStatus maps a stored value to a GameStatus, falling back to unknown.
func ParseGameStatus(s string) GameStatus {
	status := GameStatus(s)
	if _, ok := gameStatusLabels[status]; ok {
		return status
	}
	return GameStatusUnknown
}

// Label is the human readable name of the status.
func (s GameStatus) Label() string {
	if label, ok := gameStatusLabels[s]; ok {
		return label
	}
	return gameStatusLabels[GameStatusUnknown]
}

// IsEndableStatus reports whether a game in this status may still be ended.
// Only completed games cannot.
func (s GameStatus) IsEndableStatus() bool {
	return s != GameStatusCompleted
}

// IsReportable reports whether results of a game in this status are still reported.
func (s GameStatus) IsReportable() bool {
	switch s {
	case GameStatusIdleNewGame, GameStatusInProgress:
		return true
	default:
		return false
	}
}

// ReportableStatuses lists the statuses for which IsReportable is true.
func ReportableStatuses() []GameStatus {
	return []GameStatus{GameStatusIdleNewGame, GameStatusInProgress}
}
