package multiplayerhandlers

import (
	"context"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
)

// FakeService is a hand-written fake of multiplayerservice.Service.
type FakeService struct {
	trace []string

	CreateGameFunc           func(ctx context.Context, setup multiplayerservice.GameSetup) (multiplayerdomain.GameID, error)
	RecordMatchFunc          func(ctx context.Context, gameID multiplayerdomain.GameID, match multiplayerdomain.RealMatch) error
	ComputeResultsFunc       func(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerservice.ResultsView, error)
	ReportResultsFunc        func(ctx context.Context, gameID multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error)
	GetGameStandingFunc      func(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error)
	ListReportableGamesFunc  func(ctx context.Context) ([]multiplayerdomain.GameID, error)
	UpdateMessageTargetsFunc func(ctx context.Context, gameID multiplayerdomain.GameID, action multiplayerdomain.MessageTargetAction) ([]multiplayerdomain.MessageTarget, error)
	SetGameStatusFunc        func(ctx context.Context, gameID multiplayerdomain.GameID, status multiplayerdomain.GameStatus) error
	AddLobbyFunc             func(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)
	RemoveLobbyFunc          func(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) CreateGame(ctx context.Context, setup multiplayerservice.GameSetup) (multiplayerdomain.GameID, error) {
	f.record("CreateGame")
	if f.CreateGameFunc != nil {
		return f.CreateGameFunc(ctx, setup)
	}
	return 1, nil
}

func (f *FakeService) RecordMatch(ctx context.Context, gameID multiplayerdomain.GameID, match multiplayerdomain.RealMatch) error {
	f.record("RecordMatch")
	if f.RecordMatchFunc != nil {
		return f.RecordMatchFunc(ctx, gameID, match)
	}
	return nil
}

func (f *FakeService) ComputeResults(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerservice.ResultsView, error) {
	f.record("ComputeResults")
	if f.ComputeResultsFunc != nil {
		return f.ComputeResultsFunc(ctx, gameID)
	}
	return &multiplayerservice.ResultsView{}, nil
}

func (f *FakeService) ReportResults(ctx context.Context, gameID multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
	f.record("ReportResults")
	if f.ReportResultsFunc != nil {
		return f.ReportResultsFunc(ctx, gameID, opts)
	}
	return &multiplayerservice.ReportOutcome{GameID: gameID}, nil
}

func (f *FakeService) GetGameStanding(ctx context.Context, gameID multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error) {
	f.record("GetGameStanding")
	if f.GetGameStandingFunc != nil {
		return f.GetGameStandingFunc(ctx, gameID)
	}
	return &multiplayerdomain.GameStanding{GameID: gameID}, nil
}

func (f *FakeService) ListReportableGames(ctx context.Context) ([]multiplayerdomain.GameID, error) {
	f.record("ListReportableGames")
	if f.ListReportableGamesFunc != nil {
		return f.ListReportableGamesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) UpdateMessageTargets(ctx context.Context, gameID multiplayerdomain.GameID, action multiplayerdomain.MessageTargetAction) ([]multiplayerdomain.MessageTarget, error) {
	f.record("UpdateMessageTargets")
	if f.UpdateMessageTargetsFunc != nil {
		return f.UpdateMessageTargetsFunc(ctx, gameID, action)
	}
	return []multiplayerdomain.MessageTarget{action.Target}, nil
}

func (f *FakeService) SetGameStatus(ctx context.Context, gameID multiplayerdomain.GameID, status multiplayerdomain.GameStatus) error {
	f.record("SetGameStatus")
	if f.SetGameStatusFunc != nil {
		return f.SetGameStatusFunc(ctx, gameID, status)
	}
	return nil
}

func (f *FakeService) AddLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
	f.record("AddLobby")
	if f.AddLobbyFunc != nil {
		return f.AddLobbyFunc(ctx, gameID, lobbyID)
	}
	return []multiplayerdomain.LobbyID{lobbyID}, nil
}

func (f *FakeService) RemoveLobby(ctx context.Context, gameID multiplayerdomain.GameID, lobbyID multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
	f.record("RemoveLobby")
	if f.RemoveLobbyFunc != nil {
		return f.RemoveLobbyFunc(ctx, gameID, lobbyID)
	}
	return nil, nil
}

var _ multiplayerservice.Service = (*FakeService)(nil)
