package multiplayerhandlers

import (
	"context"
	"errors"

	multiplayerservice "github.com/Black-And-White-Club/royale-bot/app/modules/multiplayer/application"
	"github.com/Black-And-White-Club/royale-bot/app/observability/attr"
	multiplayerevents "github.com/Black-And-White-Club/royale-bot/pkg/events/multiplayer"
	"github.com/Black-And-White-Club/royale-bot/pkg/handlerwrapper"
)

// HandleResultsReportRequested runs a report pass. A pass that stopped while
// publishing is acknowledged with a failure event; the next pass resumes after
// the recorded items.
func (h *MultiplayerHandlers) HandleResultsReportRequested(
	ctx context.Context,
	payload *multiplayerevents.ResultsReportRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	outcome, err := h.service.ReportResults(ctx, payload.GameID, multiplayerservice.ReportOptions{DryRun: payload.DryRun})
	if err != nil {
		var pubErr *multiplayerservice.PublishError
		switch {
		case errors.As(err, &pubErr):
			h.logger.WarnContext(ctx, "Report pass stopped while publishing",
				attr.ExtractCorrelationID(ctx),
				attr.GameID(payload.GameID),
				attr.Int("published", pubErr.Published),
				attr.Error(err),
			)
			return []handlerwrapper.Result{{
				Topic: multiplayerevents.ResultsReportFailedV1,
				Payload: &multiplayerevents.ResultsReportFailedPayloadV1{
					GameID:    payload.GameID,
					Reason:    err.Error(),
					Published: pubErr.Published,
				},
			}}, nil
		case multiplayerservice.IsBusinessError(err):
			return []handlerwrapper.Result{{
				Topic: multiplayerevents.ResultsReportFailedV1,
				Payload: &multiplayerevents.ResultsReportFailedPayloadV1{
					GameID: payload.GameID,
					Reason: err.Error(),
				},
			}}, nil
		default:
			return nil, err
		}
	}

	return []handlerwrapper.Result{{
		Topic: multiplayerevents.ResultsReportedV1,
		Payload: &multiplayerevents.ResultsReportedPayloadV1{
			GameID:    payload.GameID,
			Published: len(outcome.Published),
			Pending:   len(outcome.Pending),
			Concluded: outcome.Concluded,
			Status:    outcome.Status,
			DryRun:    payload.DryRun,
		},
	}}, nil
}

// HandleMatchRecorded stores the match and asks for a report pass.
func (h *MultiplayerHandlers) HandleMatchRecorded(
	ctx context.Context,
	payload *multiplayerevents.MatchRecordedPayloadV1,
) ([]handlerwrapper.Result, error) {
	if err := h.service.RecordMatch(ctx, payload.GameID, payload.Match); err != nil {
		if !multiplayerservice.IsBusinessError(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic: multiplayerevents.MatchRecordFailedV1,
			Payload: &multiplayerevents.MatchRecordFailedPayloadV1{
				GameID:  payload.GameID,
				MatchID: payload.Match.ID,
				Reason:  err.Error(),
			},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   multiplayerevents.ResultsReportRequestedV1,
		Payload: &multiplayerevents.ResultsReportRequestedPayloadV1{GameID: payload.GameID},
	}}, nil
}
