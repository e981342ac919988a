package multiplayerhandlers

import (
	"context"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
)

// HandleMessageTargetsUpdateRequested applies a message target action.
func (h *MultiplayerHandlers) HandleMessageTargetsUpdateRequested(
	ctx context.Context,
	payload *multiplayerevents.MessageTargetsUpdateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	targets, err := h.service.UpdateMessageTargets(ctx, payload.GameID, payload.Action)
	if err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:   multiplayerevents.MessageTargetsUpdateFailedV1,
			Payload: &multiplayerevents.GameFailedPayloadV1{GameID: payload.GameID, Reason: err.Error()},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.MessageTargetsUpdatedV1,
		Payload: &multiplayerevents.MessageTargetsUpdatedPayloadV1{GameID: payload.GameID, Targets: targets},
	}}, nil
}

// HandleGameStatusUpdateRequested moves a game to the requested status.
func (h *MultiplayerHandlers) HandleGameStatusUpdateRequested(
	ctx context.Context,
	payload *multiplayerevents.GameStatusUpdateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if err := h.service.SetGameStatus(ctx, payload.GameID, payload.Status); err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:   multiplayerevents.GameStatusUpdateFailedV1,
			Payload: &multiplayerevents.GameFailedPayloadV1{GameID: payload.GameID, Reason: err.Error()},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.GameStatusUpdatedV1,
		Payload: &multiplayerevents.GameStatusUpdatedPayloadV1{GameID: payload.GameID, Status: payload.Status},
	}}, nil
}

// HandleLobbyAddRequested attaches a lobby to a game.
func (h *MultiplayerHandlers) HandleLobbyAddRequested(
	ctx context.Context,
	payload *multiplayerevents.LobbyChangeRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	lobbies, err := h.service.AddLobby(ctx, payload.GameID, payload.LobbyID)
	if err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:   multiplayerevents.LobbyAddFailedV1,
			Payload: &multiplayerevents.GameFailedPayloadV1{GameID: payload.GameID, Reason: err.Error()},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.LobbyAddedV1,
		Payload: &multiplayerevents.LobbiesChangedPayloadV1{GameID: payload.GameID, LobbyID: payload.LobbyID, Lobbies: lobbies},
	}}, nil
}

// HandleLobbyRemoveRequested stops waiting for a lobby and asks for a report
// pass, since rounds that only waited for it may now be complete.
func (h *MultiplayerHandlers) HandleLobbyRemoveRequested(
	ctx context.Context,
	payload *multiplayerevents.LobbyChangeRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	lobbies, err := h.service.RemoveLobby(ctx, payload.GameID, payload.LobbyID)
	if err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:   multiplayerevents.LobbyRemoveFailedV1,
			Payload: &multiplayerevents.GameFailedPayloadV1{GameID: payload.GameID, Reason: err.Error()},
		}}, nil
	}

	return []handlerwrapper.Result{
		{
			Topic:   multiplayerevents.LobbyRemovedV1,
			Payload: &multiplayerevents.LobbiesChangedPayloadV1{GameID: payload.GameID, LobbyID: payload.LobbyID, Lobbies: lobbies},
		},
		{
			Topic:   multiplayerevents.ResultsReportRequestedV1,
			Payload: &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: payload.GameID},
		},
	}, nil
}

// HandleStandingRequested replies with the standing of a game. The reply goes
// to the requester's reply subject when one was given.
func (h *MultiplayerHandlers) HandleStandingRequested(
	ctx context.Context,
	payload *multiplayerevents.StandingRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	standing, err := h.service.GetGameStanding(ctx, payload.GameID)
	if err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic:   replyTopic(ctx, multiplayerevents.StandingFailedV1),
			Payload: &multiplayerevents.GameFailedPayloadV1{GameID: payload.GameID, Reason: err.Error()},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   replyTopic(ctx, multiplayerevents.StandingResponseV1),
		Payload: &multiplayerevents.StandingResponsePayloadV1{Standing: *standing},
	}}, nil
}
