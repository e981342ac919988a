package multiplayerhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerdomain "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/domain"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

const testGameID = multiplayerdomain.GameID(42)

func newTestHandlers(svc *FakeService) *MultiplayerHandlers {
	return &MultiplayerHandlers{
		service: svc,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

func TestHandleResultsReportRequested(t *testing.T) {
	tests := []struct {
		name        string
		setupFake   func(*FakeService)
		payload     *multiplayerevents.ResultsReportRequestedPayloadV1
		wantErr     bool
		wantTopic   string
		verifyTopic func(t *testing.T, payload any)
	}{
		{
			name: "reports published items",
			setupFake: func(f *FakeService) {
				f.ReportResultsFunc = func(ctx context.Context, id multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
					return &multiplayerservice.ReportOutcome{
						GameID:    id,
						Published: make([]multiplayerdomain.ReportableContext, 3),
						Concluded: true,
						Status:    multiplayerdomain.GameStatusCompleted,
					}, nil
				}
			},
			payload:   &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: testGameID},
			wantTopic: multiplayerevents.ResultsReportedV1,
			verifyTopic: func(t *testing.T, payload any) {
				p := payload.(*multiplayerevents.ResultsReportedPayloadV1)
				assert.Equal(t, 3, p.Published)
				assert.True(t, p.Concluded)
				assert.Equal(t, multiplayerdomain.GameStatusCompleted, p.Status)
			},
		},
		{
			name: "dry run is passed through",
			setupFake: func(f *FakeService) {
				f.ReportResultsFunc = func(ctx context.Context, id multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
					if !opts.DryRun {
						return nil, errors.New("expected a dry run")
					}
					return &multiplayerservice.ReportOutcome{GameID: id, Pending: make([]multiplayerdomain.ReportableContext, 2)}, nil
				}
			},
			payload:   &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: testGameID, DryRun: true},
			wantTopic: multiplayerevents.ResultsReportedV1,
			verifyTopic: func(t *testing.T, payload any) {
				p := payload.(*multiplayerevents.ResultsReportedPayloadV1)
				assert.Equal(t, 2, p.Pending)
				assert.True(t, p.DryRun)
			},
		},
		{
			name: "partial publication is acknowledged as failed",
			setupFake: func(f *FakeService) {
				f.ReportResultsFunc = func(ctx context.Context, id multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
					err := &multiplayerservice.PublishError{GameID: id, Published: 2, Err: errors.New("nats down")}
					return &multiplayerservice.ReportOutcome{GameID: id}, err
				}
			},
			payload:   &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: testGameID},
			wantTopic: multiplayerevents.ResultsReportFailedV1,
			verifyTopic: func(t *testing.T, payload any) {
				p := payload.(*multiplayerevents.ResultsReportFailedPayloadV1)
				assert.Equal(t, 2, p.Published)
				assert.Contains(t, p.Reason, "nats down")
			},
		},
		{
			name: "unknown game is acknowledged as failed",
			setupFake: func(f *FakeService) {
				f.ReportResultsFunc = func(ctx context.Context, id multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
					return nil, multiplayerservice.ErrGameNotFound
				}
			},
			payload:   &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: testGameID},
			wantTopic: multiplayerevents.ResultsReportFailedV1,
		},
		{
			name: "infrastructure error is returned for retry",
			setupFake: func(f *FakeService) {
				f.ReportResultsFunc = func(ctx context.Context, id multiplayerdomain.GameID, opts multiplayerservice.ReportOptions) (*multiplayerservice.ReportOutcome, error) {
					return nil, fmt.Errorf("ReportResults: %w", errors.New("connection refused"))
				}
			},
			payload: &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: testGameID},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeService()
			tt.setupFake(svc)
			h := newTestHandlers(svc)

			results, err := h.HandleResultsReportRequested(context.Background(), tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, results)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			if tt.verifyTopic != nil {
				tt.verifyTopic(t, results[0].Payload)
			}
		})
	}
}

func TestHandleMatchRecorded(t *testing.T) {
	match := multiplayerdomain.RealMatch{ID: 9, LobbyID: 10, BeatmapID: "100"}

	tests := []struct {
		name      string
		recordErr error
		wantErr   bool
		wantTopic string
	}{
		{name: "stored match requests a report pass", wantTopic: multiplayerevents.ResultsReportRequestedV1},
		{name: "unknown lobby", recordErr: multiplayerservice.ErrUnknownLobby, wantTopic: multiplayerevents.MatchRecordFailedV1},
		{name: "missing beatmap", recordErr: multiplayerdomain.ErrMatchMissingBeatmap, wantTopic: multiplayerevents.MatchRecordFailedV1},
		{name: "database error", recordErr: errors.New("deadlock detected"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeService()
			svc.RecordMatchFunc = func(ctx context.Context, id multiplayerdomain.GameID, m multiplayerdomain.RealMatch) error {
				assert.Equal(t, testGameID, id)
				assert.Equal(t, match.ID, m.ID)
				return tt.recordErr
			}
			h := newTestHandlers(svc)

			results, err := h.HandleMatchRecorded(context.Background(), &multiplayerevents.MatchRecordedPayloadV1{GameID: testGameID, Match: match})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			assert.Equal(t, []string{"RecordMatch"}, svc.Trace())
		})
	}
}

func TestHandleMessageTargetsUpdateRequested(t *testing.T) {
	target := multiplayerdomain.MessageTarget{Type: multiplayerdomain.CommunicationClientWeb, ChannelID: "abc"}

	svc := NewFakeService()
	h := newTestHandlers(svc)
	results, err := h.HandleMessageTargetsUpdateRequested(context.Background(), &multiplayerevents.MessageTargetsUpdateRequestedPayloadV1{
		GameID: testGameID,
		Action: multiplayerdomain.MessageTargetAction{Action: multiplayerdomain.MessageTargetAdd, Target: target},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, multiplayerevents.MessageTargetsUpdatedV1, results[0].Topic)
	assert.Equal(t, []multiplayerdomain.MessageTarget{target}, results[0].Payload.(*multiplayerevents.MessageTargetsUpdatedPayloadV1).Targets)

	svc.UpdateMessageTargetsFunc = func(ctx context.Context, id multiplayerdomain.GameID, action multiplayerdomain.MessageTargetAction) ([]multiplayerdomain.MessageTarget, error) {
		return nil, multiplayerdomain.ErrUnknownMessageTargetAction
	}
	results, err = h.HandleMessageTargetsUpdateRequested(context.Background(), &multiplayerevents.MessageTargetsUpdateRequestedPayloadV1{GameID: testGameID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, multiplayerevents.MessageTargetsUpdateFailedV1, results[0].Topic)
}

func TestHandleGameStatusUpdateRequested(t *testing.T) {
	tests := []struct {
		name      string
		setErr    error
		wantErr   bool
		wantTopic string
	}{
		{name: "status updated", wantTopic: multiplayerevents.GameStatusUpdatedV1},
		{name: "completed game cannot be ended", setErr: multiplayerservice.ErrGameNotEndable, wantTopic: multiplayerevents.GameStatusUpdateFailedV1},
		{name: "database error", setErr: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeService()
			svc.SetGameStatusFunc = func(ctx context.Context, id multiplayerdomain.GameID, status multiplayerdomain.GameStatus) error {
				return tt.setErr
			}
			h := newTestHandlers(svc)

			results, err := h.HandleGameStatusUpdateRequested(context.Background(), &multiplayerevents.GameStatusUpdateRequestedPayloadV1{
				GameID: testGameID,
				Status: multiplayerdomain.GameStatusManuallyEnded,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
		})
	}
}

func TestHandleStandingRequested(t *testing.T) {
	svc := NewFakeService()
	h := newTestHandlers(svc)
	payload := &multiplayerevents.StandingRequestedPayloadV1{GameID: testGameID}

	results, err := h.HandleStandingRequested(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, multiplayerevents.StandingResponseV1, results[0].Topic)
	assert.Equal(t, testGameID, results[0].Payload.(*multiplayerevents.StandingResponsePayloadV1).Standing.GameID)

	ctx := context.WithValue(context.Background(), handlerwrapper.CtxKeyReplyTo, "_INBOX.abc")
	results, err = h.HandleStandingRequested(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "_INBOX.abc", results[0].Topic, "replies go to the reply subject")

	svc.GetGameStandingFunc = func(ctx context.Context, id multiplayerdomain.GameID) (*multiplayerdomain.GameStanding, error) {
		return nil, multiplayerservice.ErrGameNotFound
	}
	results, err = h.HandleStandingRequested(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, multiplayerevents.StandingFailedV1, results[0].Topic)
}

func TestHandleLobbyAddRequested(t *testing.T) {
	tests := []struct {
		name      string
		addErr    error
		wantErr   bool
		wantTopic string
	}{
		{name: "lobby added", wantTopic: multiplayerevents.LobbyAddedV1},
		{name: "lobby of another game", addErr: multiplayerservice.ErrLobbyInUse, wantTopic: multiplayerevents.LobbyAddFailedV1},
		{name: "database error", addErr: errors.New("timeout"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeService()
			svc.AddLobbyFunc = func(ctx context.Context, id multiplayerdomain.GameID, lobby multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
				if tt.addErr != nil {
					return nil, tt.addErr
				}
				return []multiplayerdomain.LobbyID{10, lobby}, nil
			}
			h := newTestHandlers(svc)

			results, err := h.HandleLobbyAddRequested(context.Background(), &multiplayerevents.LobbyChangeRequestedPayloadV1{GameID: testGameID, LobbyID: 11})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			if changed, ok := results[0].Payload.(*multiplayerevents.LobbiesChangedPayloadV1); ok {
				assert.Equal(t, []multiplayerdomain.LobbyID{10, 11}, changed.Lobbies)
			}
		})
	}
}

func TestHandleLobbyRemoveRequested(t *testing.T) {
	svc := NewFakeService()
	svc.RemoveLobbyFunc = func(ctx context.Context, id multiplayerdomain.GameID, lobby multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
		return []multiplayerdomain.LobbyID{10}, nil
	}
	h := newTestHandlers(svc)
	payload := &multiplayerevents.LobbyChangeRequestedPayloadV1{GameID: testGameID, LobbyID: 11}

	results, err := h.HandleLobbyRemoveRequested(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, multiplayerevents.LobbyRemovedV1, results[0].Topic)
	assert.Equal(t, []multiplayerdomain.LobbyID{10}, results[0].Payload.(*multiplayerevents.LobbiesChangedPayloadV1).Lobbies)
	assert.Equal(t, multiplayerevents.ResultsReportRequestedV1, results[1].Topic, "a removal triggers a report pass")
	assert.Equal(t, testGameID, results[1].Payload.(*multiplayerevents.ResultsReportRequestedPayloadV1).GameID)

	svc.RemoveLobbyFunc = func(ctx context.Context, id multiplayerdomain.GameID, lobby multiplayerdomain.LobbyID) ([]multiplayerdomain.LobbyID, error) {
		return nil, multiplayerservice.ErrLobbyNotFound
	}
	results, err = h.HandleLobbyRemoveRequested(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, multiplayerevents.LobbyRemoveFailedV1, results[0].Topic)
}
