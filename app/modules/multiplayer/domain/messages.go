package multiplayerdomain

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// MessageType names a status message; it is the reportable subtype of messages.
type MessageType string

const (
	MessageLobbyCompletedBeatmap      MessageType = "lobby_completed_beatmap"
	MessageAllLobbiesCompletedBeatmap MessageType = "all_lobbies_completed_beatmap"
	MessageWaitingForLobbies          MessageType = "waiting_for_lobbies"
)

// Known reports whether the message type is one this package produces.
func (t MessageType) Known() bool {
	switch t {
	case MessageLobbyCompletedBeatmap, MessageAllLobbiesCompletedBeatmap, MessageWaitingForLobbies:
		return true
	default:
		return false
	}
}

// StatusMessage tells a game's channels about lobby progress on a round.
type StatusMessage struct {
	Type              MessageType `json:"type"`
	GameID            GameID      `json:"gameId"`
	LobbyID           LobbyID     `json:"lobbyId,omitempty"`
	BeatmapID         string      `json:"beatmapId"`
	SameBeatmapNumber int         `json:"sameBeatmapNumber"`
	// WaitingFor lists lobbies that have not yet played the round.
	WaitingFor []LobbyID `json:"waitingFor,omitempty"`
	Time       time.Time `json:"time"`
	Message    string    `json:"message"`
}

func (StatusMessage) reportable() {}

// Key returns the round the message belongs to.
func (m StatusMessage) Key() VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: m.BeatmapID, SameBeatmapNumber: m.SameBeatmapNumber}
}

func (m StatusMessage) discriminant() string {
	if m.Type == MessageLobbyCompletedBeatmap {
		return strconv.FormatInt(int64(m.LobbyID), 10)
	}
	return ""
}

func matchTime(m RealMatch) time.Time {
	switch {
	case m.EndTime != nil:
		return *m.EndTime
	case m.StartTime != nil:
		return *m.StartTime
	default:
		return time.Time{}
	}
}

// RoundMessages builds the status messages for a round given the game's lobbies.
func RoundMessages(game Game, vm VirtualMatch) []StatusMessage {
	messages := make([]StatusMessage, 0, len(vm.Matches)+1)
	for _, m := range vm.Matches {
		messages = append(messages, StatusMessage{
			Type:              MessageLobbyCompletedBeatmap,
			GameID:            game.ID,
			LobbyID:           m.LobbyID,
			BeatmapID:         vm.Key.BeatmapID,
			SameBeatmapNumber: vm.Key.SameBeatmapNumber,
			Time:              matchTime(m),
			Message:           fmt.Sprintf("Lobby %d completed beatmap %s (#%d).", m.LobbyID, vm.Key.BeatmapID, vm.Key.SameBeatmapNumber),
		})
	}

	var waiting []LobbyID
	played := vm.LobbyIDs()
	for _, id := range game.LobbyIDs {
		if !slices.Contains(played, id) {
			waiting = append(waiting, id)
		}
	}

	if len(waiting) == 0 {
		messages = append(messages, StatusMessage{
			Type:              MessageAllLobbiesCompletedBeatmap,
			GameID:            game.ID,
			BeatmapID:         vm.Key.BeatmapID,
			SameBeatmapNumber: vm.Key.SameBeatmapNumber,
			Time:              vm.Time(),
			Message:           fmt.Sprintf("All lobbies completed beatmap %s (#%d).", vm.Key.BeatmapID, vm.Key.SameBeatmapNumber),
		})
		return messages
	}

	messages = append(messages, StatusMessage{
		Type:              MessageWaitingForLobbies,
		GameID:            game.ID,
		BeatmapID:         vm.Key.BeatmapID,
		SameBeatmapNumber: vm.Key.SameBeatmapNumber,
		WaitingFor:        waiting,
		Time:              vm.Time(),
		Message:           fmt.Sprintf("Waiting for %d more lobbies to complete beatmap %s (#%d).", len(waiting), vm.Key.BeatmapID, vm.Key.SameBeatmapNumber),
	})
	return messages
}
