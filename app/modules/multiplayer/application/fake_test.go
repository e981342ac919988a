package multiplayerservice

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerdb "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Multiplayer Repo
// ------------------------

// FakeMultiplayerRepo keeps games in memory unless a Func override is set.
type FakeMultiplayerRepo struct {
	mu    sync.Mutex
	trace []string

	Games    map[int64]*multiplayerdb.Game
	Matches  map[int64][]multiplayerdb.Match
	Reported map[int64][]multiplayerdb.ReportedItem
	nextID   int64

	GetGameFunc        func(ctx context.Context, db bun.IDB, gameID int64) (*multiplayerdb.Game, error)
	AppendReportedFunc func(ctx context.Context, db bun.IDB, items []multiplayerdb.ReportedItem) (int64, error)
	UpsertMatchFunc    func(ctx context.Context, db bun.IDB, match *multiplayerdb.Match) error
}

func NewFakeMultiplayerRepo() *FakeMultiplayerRepo {
	return &FakeMultiplayerRepo{
		trace:    []string{},
		Games:    make(map[int64]*multiplayerdb.Game),
		Matches:  make(map[int64][]multiplayerdb.Match),
		Reported: make(map[int64][]multiplayerdb.ReportedItem),
		nextID:   1,
	}
}

func (f *FakeMultiplayerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeMultiplayerRepo) CreateGame(ctx context.Context, db bun.IDB, game *multiplayerdb.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateGame")
	game.ID = f.nextID
	f.nextID++
	for i, t := range game.Teams {
		t.ID = game.ID*100 + int64(i) + 1
		t.GameID = game.ID
	}
	for _, l := range game.Lobbies {
		l.GameID = game.ID
	}
	f.Games[game.ID] = game
	return nil
}

func (f *FakeMultiplayerRepo) GetGame(ctx context.Context, db bun.IDB, gameID int64) (*multiplayerdb.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, db, gameID)
	}
	g, ok := f.Games[gameID]
	if !ok {
		return nil, multiplayerdb.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *FakeMultiplayerRepo) ListGameIDsByStatus(ctx context.Context, db bun.IDB, statuses ...string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListGameIDsByStatus")
	var ids []int64
	for _, id := range slices.Sorted(maps.Keys(f.Games)) {
		if slices.Contains(statuses, f.Games[id].Status) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *FakeMultiplayerRepo) UpdateStatus(ctx context.Context, db bun.IDB, gameID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateStatus")
	g, ok := f.Games[gameID]
	if !ok {
		return multiplayerdb.ErrNotFound
	}
	g.Status = status
	return nil
}

func (f *FakeMultiplayerRepo) UpdateMessageTargets(ctx context.Context, db bun.IDB, gameID int64, targets []multiplayerdomain.MessageTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateMessageTargets")
	g, ok := f.Games[gameID]
	if !ok {
		return multiplayerdb.ErrNotFound
	}
	g.MessageTargets = targets
	return nil
}

func (f *FakeMultiplayerRepo) UpsertMatch(ctx context.Context, db bun.IDB, match *multiplayerdb.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertMatch")
	if f.UpsertMatchFunc != nil {
		return f.UpsertMatchFunc(ctx, db, match)
	}
	for gameID, matches := range f.Matches {
		for i := range matches {
			if matches[i].ID != match.ID {
				continue
			}
			if gameID != match.GameID || matches[i].LobbyID != match.LobbyID {
				return multiplayerdb.ErrMatchOwnership
			}
			matches[i] = *match
			return nil
		}
	}
	f.Matches[match.GameID] = append(f.Matches[match.GameID], *match)
	return nil
}

func (f *FakeMultiplayerRepo) AddLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddLobby")
	for id, g := range f.Games {
		for _, l := range g.Lobbies {
			if l.ID != lobbyID {
				continue
			}
			if id != gameID {
				return multiplayerdb.ErrLobbyInUse
			}
			l.RemovedAt = nil
			return nil
		}
	}
	g, ok := f.Games[gameID]
	if !ok {
		return multiplayerdb.ErrNotFound
	}
	g.Lobbies = append(g.Lobbies, &multiplayerdb.Lobby{ID: lobbyID, GameID: gameID})
	return nil
}

func (f *FakeMultiplayerRepo) RemoveLobby(ctx context.Context, db bun.IDB, gameID, lobbyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RemoveLobby")
	g, ok := f.Games[gameID]
	if !ok {
		return multiplayerdb.ErrLobbyNotFound
	}
	for _, l := range g.Lobbies {
		if l.ID == lobbyID && l.Active() {
			now := time.Now()
			l.RemovedAt = &now
			return nil
		}
	}
	return multiplayerdb.ErrLobbyNotFound
}

func (f *FakeMultiplayerRepo) ListMatches(ctx context.Context, db bun.IDB, gameID int64) ([]multiplayerdb.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListMatches")
	return append([]multiplayerdb.Match(nil), f.Matches[gameID]...), nil
}

func (f *FakeMultiplayerRepo) ListReported(ctx context.Context, db bun.IDB, gameID int64) ([]multiplayerdb.ReportedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListReported")
	return append([]multiplayerdb.ReportedItem(nil), f.Reported[gameID]...), nil
}

func (f *FakeMultiplayerRepo) AppendReported(ctx context.Context, db bun.IDB, items []multiplayerdb.ReportedItem) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendReported")
	if f.AppendReportedFunc != nil {
		return f.AppendReportedFunc(ctx, db, items)
	}
	var n int64
	for _, item := range items {
		existing := f.Reported[item.GameID]
		dup := false
		for _, e := range existing {
			if e.ReportKey == item.ReportKey {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		item.ID = int64(len(existing) + 1)
		f.Reported[item.GameID] = append(existing, item)
		n++
	}
	return n, nil
}

func (f *FakeMultiplayerRepo) LockGame(ctx context.Context, db bun.IDB, gameID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockGame")
	return nil
}

// --- Accessors for assertions ---

func (f *FakeMultiplayerRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ multiplayerdb.Repository = (*FakeMultiplayerRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

var errPublishUnavailable = errors.New("publisher unavailable")

type FakePublisher struct {
	mu        sync.Mutex
	published []multiplayerdomain.ReportableContext
	// FailAt makes the n-th publication (zero based) fail; negative never fails.
	FailAt int
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{FailAt: -1}
}

func (p *FakePublisher) PublishReportable(ctx context.Context, game multiplayerdomain.Game, item multiplayerdomain.ReportableContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAt >= 0 && len(p.published) == p.FailAt {
		return errPublishUnavailable
	}
	p.published = append(p.published, item)
	return nil
}

func (p *FakePublisher) Published() []multiplayerdomain.ReportableContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]multiplayerdomain.ReportableContext(nil), p.published...)
}

var _ ReportPublisher = (*FakePublisher)(nil)
