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

// CreateGame stores a new game in the scheduled status.
func (s *MultiplayerService) CreateGame(ctx context.Context, setup GameSetup) (multiplayerdomain.GameID, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[multiplayerdomain.GameID, error], error) {
		return s.createGameLogic(ctx, db, setup)
	}

	result, err := withTelemetry(s, ctx, "CreateGame", setup.Name, func(ctx context.Context) (results.OperationResult[multiplayerdomain.GameID, error], error) {
		return runInTx(s, ctx, createTx)
	})
	return unwrap(result, err)
}

// createGameLogic contains the core logic.
func (s *MultiplayerService) createGameLogic(ctx context.Context, db bun.IDB, setup GameSetup) (results.OperationResult[multiplayerdomain.GameID, error], error) {
	if err := validateSetup(setup); err != nil {
		return results.FailureResult[multiplayerdomain.GameID, error](err), nil
	}

	row := &multiplayerdb.Game{
		Name:              setup.Name,
		Status:            string(multiplayerdomain.GameStatusScheduled),
		TeamLives:         max(setup.TeamLives, 1),
		CountFailedScores: setup.CountFailedScores,
		MessageTargets:    setup.MessageTargets,
	}
	for _, t := range setup.Teams {
		team := &multiplayerdb.Team{Number: t.Number, Name: t.Name}
		for _, m := range t.Members {
			team.Members = append(team.Members, &multiplayerdb.TeamMember{PlayerID: m.PlayerID, Username: m.Username})
		}
		row.Teams = append(row.Teams, team)
	}
	for _, id := range setup.LobbyIDs {
		row.Lobbies = append(row.Lobbies, &multiplayerdb.Lobby{ID: int64(id)})
	}

	if err := s.repo.CreateGame(ctx, db, row); err != nil {
		return results.OperationResult[multiplayerdomain.GameID, error]{}, err
	}
	return results.SuccessResult[multiplayerdomain.GameID, error](multiplayerdomain.GameID(row.ID)), nil
}

func validateSetup(setup GameSetup) error {
	if len(setup.Teams) < 2 {
		return fmt.Errorf("%w: at least two teams are required", ErrInvalidGameSetup)
	}
	if len(setup.LobbyIDs) == 0 {
		return fmt.Errorf("%w: at least one lobby is required", ErrInvalidGameSetup)
	}
	numbers := make(map[int]struct{}, len(setup.Teams))
	players := make(map[string]struct{})
	for _, t := range setup.Teams {
		if _, dup := numbers[t.Number]; dup {
			return fmt.Errorf("%w: duplicate team number %d", ErrInvalidGameSetup, t.Number)
		}
		numbers[t.Number] = struct{}{}
		for _, m := range t.Members {
			if _, dup := players[m.PlayerID]; dup {
				return fmt.Errorf("%w: player %s is on more than one team", ErrInvalidGameSetup, m.PlayerID)
			}
			players[m.PlayerID] = struct{}{}
		}
	}
	return nil
}

// RecordMatch stores a lobby's play of a beatmap. The first match moves a
// scheduled or idle game in progress.
func (s *MultiplayerService) RecordMatch(ctx context.Context, gameID multiplayerdomain.GameID, match multiplayerdomain.RealMatch) error {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		return s.recordMatchLogic(ctx, db, gameID, match)
	}

	result, err := withTelemetry(s, ctx, "RecordMatch", gameID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, recordTx)
	})
	_, err = unwrap(result, err)
	return err
}

// recordMatchLogic contains the core logic.
func (s *MultiplayerService) recordMatchLogic(ctx context.Context, db bun.IDB, gameID multiplayerdomain.GameID, match multiplayerdomain.RealMatch) (results.OperationResult[bool, error], error) {
	if match.BeatmapID == "" {
		return results.FailureResult[bool, error](multiplayerdomain.ErrMatchMissingBeatmap), nil
	}

	row, err := s.repo.GetGame(ctx, db, int64(gameID))
	if err != nil {
		if errors.Is(err, multiplayerdb.ErrNotFound) {
			return results.FailureResult[bool, error](ErrGameNotFound), nil
		}
		return results.OperationResult[bool, error]{}, err
	}
	game := row.ToDomain(nil)
	if !slices.Contains(game.LobbyIDs, match.LobbyID) {
		return results.FailureResult[bool, error](fmt.Errorf("%w: lobby %d", ErrUnknownLobby, match.LobbyID)), nil
	}

	err = s.repo.UpsertMatch(ctx, db, &multiplayerdb.Match{
		ID:                int64(match.ID),
		GameID:            int64(gameID),
		LobbyID:           int64(match.LobbyID),
		BeatmapID:         match.BeatmapID,
		SameBeatmapNumber: match.SameBeatmapNumber,
		StartTime:         match.StartTime,
		EndTime:           match.EndTime,
		Scores:            match.Scores,
	})
	if err != nil {
		if errors.Is(err, multiplayerdb.ErrMatchOwnership) {
			return results.FailureResult[bool, error](fmt.Errorf("%w: match %d was recorded for another lobby", ErrUnknownLobby, match.ID)), nil
		}
		return results.OperationResult[bool, error]{}, err
	}

	switch game.Status {
	case multiplayerdomain.GameStatusScheduled, multiplayerdomain.GameStatusIdleNewGame:
		if err := s.repo.UpdateStatus(ctx, db, int64(gameID), string(multiplayerdomain.GameStatusInProgress)); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
	}
	return results.SuccessResult[bool, error](true), nil
}

// UpdateMessageTargets applies an action to a game's message targets.
func (s *MultiplayerService) UpdateMessageTargets(ctx context.Context, gameID multiplayerdomain.GameID, action multiplayerdomain.MessageTargetAction) ([]multiplayerdomain.MessageTarget, error) {
	updateTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]multiplayerdomain.MessageTarget, error], error) {
		row, err := s.repo.GetGame(ctx, db, int64(gameID))
		if err != nil {
			if errors.Is(err, multiplayerdb.ErrNotFound) {
				return results.FailureResult[[]multiplayerdomain.MessageTarget, error](ErrGameNotFound), nil
			}
			return results.OperationResult[[]multiplayerdomain.MessageTarget, error]{}, err
		}

		targets, err := multiplayerdomain.ApplyMessageTargetAction(row.MessageTargets, action)
		if err != nil {
			return results.FailureResult[[]multiplayerdomain.MessageTarget, error](err), nil
		}
		if err := s.repo.UpdateMessageTargets(ctx, db, int64(gameID), targets); err != nil {
			return results.OperationResult[[]multiplayerdomain.MessageTarget, error]{}, err
		}
		return results.SuccessResult[[]multiplayerdomain.MessageTarget, error](targets), nil
	}

	result, err := withTelemetry(s, ctx, "UpdateMessageTargets", gameID.String(), func(ctx context.Context) (results.OperationResult[[]multiplayerdomain.MessageTarget, error], error) {
		return runInTx(s, ctx, updateTx)
	})
	return unwrap(result, err)
}

// SetGameStatus moves a game to status. Ending a completed game fails.
func (s *MultiplayerService) SetGameStatus(ctx context.Context, gameID multiplayerdomain.GameID, status multiplayerdomain.GameStatus) error {
	statusTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if multiplayerdomain.ParseGameStatus(string(status)) != status {
			return results.FailureResult[bool, error](fmt.Errorf("%w: %q", ErrInvalidGameStatus, status)), nil
		}
		row, err := s.repo.GetGame(ctx, db, int64(gameID))
		if err != nil {
			if errors.Is(err, multiplayerdb.ErrNotFound) {
				return results.FailureResult[bool, error](ErrGameNotFound), nil
			}
			return results.OperationResult[bool, error]{}, err
		}

		current := multiplayerdomain.ParseGameStatus(row.Status)
		if status == multiplayerdomain.GameStatusManuallyEnded && !current.IsEndableStatus() {
			return results.FailureResult[bool, error](fmt.Errorf("%w: status %s", ErrGameNotEndable, current)), nil
		}
		if err := s.repo.UpdateStatus(ctx, db, int64(gameID), string(status)); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	}

	result, err := withTelemetry(s, ctx, "SetGameStatus", gameID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return runInTx(s, ctx, statusTx)
	})
	_, err = unwrap(result, err)
	return err
}
