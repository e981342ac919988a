// Package multiplayerevents holds the topics and payloads of the multiplayer module.
package multiplayerevents

import (
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

// Reporting
const (
	ResultsReportRequestedV1 = "multiplayer.results.report.requested.v1"
	ResultsReportedV1        = "multiplayer.results.reported.v1"
	ResultsReportFailedV1    = "multiplayer.results.report.failed.v1"
)

// Match ingestion
const (
	MatchRecordedV1     = "multiplayer.match.recorded.v1"
	MatchRecordFailedV1 = "multiplayer.match.record.failed.v1"
)

// Game administration
const (
	MessageTargetsUpdateRequestedV1 = "multiplayer.message_targets.update.requested.v1"
	MessageTargetsUpdatedV1         = "multiplayer.message_targets.updated.v1"
	MessageTargetsUpdateFailedV1    = "multiplayer.message_targets.update.failed.v1"

	GameStatusUpdateRequestedV1 = "multiplayer.game.status.update.requested.v1"
	GameStatusUpdatedV1         = "multiplayer.game.status.updated.v1"
	GameStatusUpdateFailedV1    = "multiplayer.game.status.update.failed.v1"

	LobbyAddRequestedV1    = "multiplayer.lobby.add.requested.v1"
	LobbyAddedV1           = "multiplayer.lobby.added.v1"
	LobbyAddFailedV1       = "multiplayer.lobby.add.failed.v1"
	LobbyRemoveRequestedV1 = "multiplayer.lobby.remove.requested.v1"
	LobbyRemovedV1         = "multiplayer.lobby.removed.v1"
	LobbyRemoveFailedV1    = "multiplayer.lobby.remove.failed.v1"
)

// Request-reply
const (
	StandingRequestedV1 = "multiplayer.standing.requested.v1"
	StandingResponseV1  = "multiplayer.standing.response.v1"
	StandingFailedV1    = "multiplayer.standing.failed.v1"
)

// ResultsReportRequestedPayloadV1 asks for a report pass over a game.
type ResultsReportRequestedPayloadV1 struct {
	GameID multiplayerdomain.GameID `json:"gameId"`
	DryRun bool                     `json:"dryRun,omitempty"`
}

// ResultsReportedPayloadV1 summarises a finished report pass.
type ResultsReportedPayloadV1 struct {
	GameID    multiplayerdomain.GameID     `json:"gameId"`
	Published int                          `json:"published"`
	Pending   int                          `json:"pending"`
	Concluded bool                         `json:"concluded"`
	Status    multiplayerdomain.GameStatus `json:"status"`
	DryRun    bool                         `json:"dryRun,omitempty"`
}

// ResultsReportFailedPayloadV1 reports a pass that stopped. Published counts
// the items delivered and recorded before it stopped.
type ResultsReportFailedPayloadV1 struct {
	GameID    multiplayerdomain.GameID `json:"gameId"`
	Reason    string                   `json:"reason"`
	Published int                      `json:"published"`
}

// MatchRecordedPayloadV1 carries a lobby's finished play of a beatmap.
type MatchRecordedPayloadV1 struct {
	GameID multiplayerdomain.GameID    `json:"gameId"`
	Match  multiplayerdomain.RealMatch `json:"match"`
}

// MatchRecordFailedPayloadV1 reports a match that could not be stored.
type MatchRecordFailedPayloadV1 struct {
	GameID  multiplayerdomain.GameID  `json:"gameId"`
	MatchID multiplayerdomain.MatchID `json:"matchId"`
	Reason  string                    `json:"reason"`
}

// MessageTargetsUpdateRequestedPayloadV1 changes where a game's reportables go.
type MessageTargetsUpdateRequestedPayloadV1 struct {
	GameID multiplayerdomain.GameID              `json:"gameId"`
	Action multiplayerdomain.MessageTargetAction `json:"action"`
}

// MessageTargetsUpdatedPayloadV1 carries the targets after an update.
type MessageTargetsUpdatedPayloadV1 struct {
	GameID  multiplayerdomain.GameID          `json:"gameId"`
	Targets []multiplayerdomain.MessageTarget `json:"targets"`
}

// GameStatusUpdateRequestedPayloadV1 moves a game to a status.
type GameStatusUpdateRequestedPayloadV1 struct {
	GameID multiplayerdomain.GameID     `json:"gameId"`
	Status multiplayerdomain.GameStatus `json:"status"`
}

// GameStatusUpdatedPayloadV1 confirms a status change.
type GameStatusUpdatedPayloadV1 struct {
	GameID multiplayerdomain.GameID     `json:"gameId"`
	Status multiplayerdomain.GameStatus `json:"status"`
}

// LobbyChangeRequestedPayloadV1 adds a lobby to or removes it from a game.
type LobbyChangeRequestedPayloadV1 struct {
	GameID  multiplayerdomain.GameID  `json:"gameId"`
	LobbyID multiplayerdomain.LobbyID `json:"lobbyId"`
}

// LobbiesChangedPayloadV1 confirms a lobby change with the game's active lobbies.
type LobbiesChangedPayloadV1 struct {
	GameID  multiplayerdomain.GameID    `json:"gameId"`
	LobbyID multiplayerdomain.LobbyID   `json:"lobbyId"`
	Lobbies []multiplayerdomain.LobbyID `json:"lobbies"`
}

// StandingRequestedPayloadV1 asks for the current standing of a game.
type StandingRequestedPayloadV1 struct {
	GameID multiplayerdomain.GameID `json:"gameId"`
}

// StandingResponsePayloadV1 is the reply to a standing request.
type StandingResponsePayloadV1 struct {
	Standing multiplayerdomain.GameStanding `json:"standing"`
}

// GameFailedPayloadV1 is the generic failure reply for game scoped requests.
type GameFailedPayloadV1 struct {
	GameID multiplayerdomain.GameID `json:"gameId"`
	Reason string                   `json:"reason"`
}
