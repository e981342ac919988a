package multiplayerdomain

import (
	"errors"
	"slices"
)

// CommunicationClientType is the kind of channel a message target lives on.
type CommunicationClientType string

const (
	CommunicationClientDiscord CommunicationClientType = "discord"
	CommunicationClientWeb     CommunicationClientType = "web"
)

// MessageTarget is a channel that receives a game's reportables.
type MessageTarget struct {
	Type      CommunicationClientType `json:"type"`
	ChannelID string                  `json:"channelId"`
}

// MessageTargetActionKind is how an action changes the target list.
type MessageTargetActionKind string

const (
	MessageTargetOverwriteAll MessageTargetActionKind = "overwrite-all"
	MessageTargetAdd          MessageTargetActionKind = "add"
	MessageTargetRemove       MessageTargetActionKind = "remove"
)

// MessageTargetAction modifies the message targets of a game.
type MessageTargetAction struct {
	Action MessageTargetActionKind `json:"action"`
	Target MessageTarget           `json:"target"`
}

var (
	ErrUnknownMessageTargetAction = errors.New("unknown message target action")
	ErrInvalidMessageTarget       = errors.New("message target requires a type and channel id")
)

// ApplyMessageTargetAction returns the targets after applying action.
// Adding an existing target and removing a missing one are no-ops.
func ApplyMessageTargetAction(targets []MessageTarget, action MessageTargetAction) ([]MessageTarget, error) {
	if action.Target.Type == "" || action.Target.ChannelID == "" {
		return nil, ErrInvalidMessageTarget
	}

	switch action.Action {
	case MessageTargetOverwriteAll:
		return []MessageTarget{action.Target}, nil
	case MessageTargetAdd:
		out := slices.Clone(targets)
		if !slices.Contains(out, action.Target) {
			out = append(out, action.Target)
		}
		return out, nil
	case MessageTargetRemove:
		return slices.DeleteFunc(slices.Clone(targets), func(t MessageTarget) bool {
			return t == action.Target
		}), nil
	default:
		return nil, ErrUnknownMessageTargetAction
	}
}
