package multiplayerservice

import (
	"errors"
	"fmt"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

var (
	// ErrGameNotFound is returned when the requested game does not exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameNotReportable is returned when a report pass is requested for a game
	// that is not in progress.
	ErrGameNotReportable = errors.New("game is not reportable")
	// ErrGameNotEndable is returned when ending a game that already completed.
	ErrGameNotEndable = errors.New("game cannot be ended")
	// ErrInvalidGameSetup is returned when a new game has fewer than two teams or no lobby.
	ErrInvalidGameSetup = errors.New("invalid game setup")
	// ErrInvalidGameStatus is returned for a status outside the known lifecycle.
	ErrInvalidGameStatus = errors.New("invalid game status")
	// ErrUnknownLobby is returned when a match is recorded for a lobby outside the game.
	ErrUnknownLobby = errors.New("lobby does not belong to game")
	// ErrLobbyInUse is returned when adding a lobby that belongs to another game.
	ErrLobbyInUse = errors.New("lobby belongs to another game")
	// ErrLobbyNotFound is returned when removing a lobby that is not active in the game.
	ErrLobbyNotFound = errors.New("lobby not found")
	// ErrLobbiesLocked is returned when lobbies are added after the first match
	// or changed on a finished game.
	ErrLobbiesLocked = errors.New("game lobbies can no longer change")
)

// PublishError reports that publication stopped at an item. Items before it
// were published and recorded.
type PublishError struct {
	GameID    multiplayerdomain.GameID
	Published int
	Item      multiplayerdomain.ReportableContext
	Err       error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("game %d: publish %s/%s for %s failed after %d items: %v",
		e.GameID, e.Item.Type, e.Item.SubType, e.Item.Key(), e.Published, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// IsBusinessError reports whether err is a rejected request rather than an
// infrastructure failure. Business errors are not worth retrying.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrGameNotFound,
		ErrGameNotReportable,
		ErrGameNotEndable,
		ErrInvalidGameSetup,
		ErrInvalidGameStatus,
		ErrUnknownLobby,
		ErrLobbyInUse,
		ErrLobbyNotFound,
		ErrLobbiesLocked,
		multiplayerdomain.ErrMatchMissingBeatmap,
		multiplayerdomain.ErrUnknownMessageTargetAction,
		multiplayerdomain.ErrInvalidMessageTarget,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
