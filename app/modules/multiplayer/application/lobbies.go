package multiplayerservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	"github.com/Black-And-White-Club/royale-bot/pkg/results"
	"github.com/uptrace/bun"
)

type lobbiesResult = results.OperationResult[[]multiplayerdomain.LobbyID, error]

// AddLobby attaches a lobby to a game. Lobbies can only be added before the
// first match is recorded, so rounds already played never wait for a newcomer.
func (s *MultiplayerService) AddLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
	addTx := func(ctx context.Context, db bun.IDB) (lobbiesResult, error) {
		return s.addLobbyLogic(ctx, db, gameID, lobbyID)
	}

	result, err := withTelemetry(s, ctx, "AddLobby", gameID.String(), func(ctx context.Context) (lobbiesResult, error) {
		return runInTx(s, ctx, addTx)
	})
	return unwrap(result, err)
}

func (s *MultiplayerService) addLobbyLogic(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) (lobbiesResult, error) {
	if lobbyID <= 0 {
		return lobbyFailure(fmt.Errorf("%w: lobby id %d", ErrInvalidGameSetup, lobbyID))
	}
	game, err := s.loadLobbyGame(ctx, db, gameID)
	if err != nil {
		return lobbyFailure(err)
	}
	if slices.Contains(game.LobbyIDs, lobbyID) {
		return results.SuccessResult[[]multiplayerdomain.LobbyID, error](game.LobbyIDs), nil
	}

	matches, err := s.repo.ListMatches(ctx, db, int64(gameID))
	if err != nil {
		return lobbiesResult{}, err
	}
	if len(matches) > 0 {
		return lobbyFailure(fmt.Errorf("%w: game %d already has recorded matches", ErrLobbiesLocked, gameID))
	}

	if err := s.repo.AddLobby(ctx, db, int64(gameID), int64(lobbyID)); err != nil {
		if errors.Is(err, multiplayerdb.ErrLobbyInUse) {
			return lobbyFailure(fmt.Errorf("%w: lobby %d", ErrLobbyInUse, lobbyID))
		}
		return lobbiesResult{}, err
	}

	lobbies := append(slices.Clone(game.LobbyIDs), lobbyID)
	slices.Sort(lobbies)
	return results.SuccessResult[[]multiplayerdomain.LobbyID, error](lobbies), nil
}

// RemoveLobby stops waiting for a lobby of an unfinished game. Matches it
// already recorded keep counting, and rounds that were only waiting for it
// complete on the next pass. The last active lobby cannot be removed.
func (s *MultiplayerService) RemoveLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
	removeTx := func(ctx context.Context, db bun.IDB) (lobbiesResult, error) {
		return s.removeLobbyLogic(ctx, db, gameID, lobbyID)
	}

	result, err := withTelemetry(s, ctx, "RemoveLobby", gameID.String(), func(ctx context.Context) (lobbiesResult, error) {
		return runInTx(s, ctx, removeTx)
	})
	return unwrap(result, err)
}

func (s *MultiplayerService) removeLobbyLogic(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) (lobbiesResult, error) {
	game, err := s.loadLobbyGame(ctx, db, gameID)
	if err != nil {
		return lobbyFailure(err)
	}
	if !slices.Contains(game.LobbyIDs, lobbyID) {
		return lobbyFailure(fmt.Errorf("%w: lobby %d", ErrLobbyNotFound, lobbyID))
	}
	if len(game.LobbyIDs) == 1 {
		return lobbyFailure(fmt.Errorf("%w: at least one lobby is required", ErrInvalidGameSetup))
	}

	if err := s.repo.RemoveLobby(ctx, db, int64(gameID), int64(lobbyID)); err != nil {
		if errors.Is(err, multiplayerdb.ErrLobbyNotFound) {
			return lobbyFailure(fmt.Errorf("%w: lobby %d", ErrLobbyNotFound, lobbyID))
		}
		return lobbiesResult{}, err
	}

	lobbies := slices.DeleteFunc(slices.Clone(game.LobbyIDs), func(id multiplayerdomain.LobbyID) bool {
		return id == lobbyID
	})
	return results.SuccessResult[[]multiplayerdomain.LobbyID, error](lobbies), nil
}

// loadLobbyGame locks and loads a game whose lobbies may still change.
func (s *MultiplayerService) loadLobbyGame(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID) (multiplayerdomain.Game, error) {
	if err := s.repo.LockGame(ctx, db, int64(gameID)); err != nil {
		return multiplayerdomain.Game{}, err
	}
	row, err := s.repo.GetGame(ctx, db, int64(gameID))
	if err != nil {
		if errors.Is(err, multiplayerdb.ErrNotFound) {
			return multiplayerdomain.Game{}, ErrGameNotFound
		}
		return multiplayerdomain.Game{}, err
	}
	game := row.ToDomain(nil)
	switch game.Status {
	case multiplayerdomain.GameStatusCompleted, multiplayerdomain.GameStatusManuallyEnded:
		return game, fmt.Errorf("%w: game %d is %s", ErrLobbiesLocked, gameID, game.Status)
	}
	return game, nil
}

func lobbyFailure(err error) (lobbiesResult, error) {
	if IsBusinessError(err) {
		return results.FailureResult[[]multiplayerdomain.LobbyID, error](err), nil
	}
	return lobbiesResult{}, err
}
