package multiplayerdomain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ReportableType is the kind of a reportable item.
type ReportableType string

const (
	ReportableGameEvent   ReportableType = "game_event"
	ReportableMessage     ReportableType = "message"
	ReportableLeaderboard ReportableType = "leaderboard"
)

var (
	// ErrUnknownReportableType is returned for an item outside the reportable union.
	ErrUnknownReportableType = errors.New("unknown reportable type")
	// ErrNoIdentityStrategy is returned when a reportable's identity cannot be derived,
	// so it cannot be compared against reported history.
	ErrNoIdentityStrategy = errors.New("no identity strategy for reportable")
)

// Reportable is implemented only by GameEvent, StatusMessage and Leaderboard.
type Reportable interface {
	reportable()
	Key() VirtualMatchKey
}

// ReportableVisitor handles each kind of reportable.
type ReportableVisitor[T any] interface {
	GameEvent(GameEvent) T
	Message(StatusMessage) T
	Leaderboard(Leaderboard) T
}

// VisitReportable dispatches item to the visitor method for its kind.
func VisitReportable[T any](item Reportable, v ReportableVisitor[T]) (T, error) {
	switch it := item.(type) {
	case GameEvent:
		return v.GameEvent(it), nil
	case StatusMessage:
		return v.Message(it), nil
	case Leaderboard:
		return v.Leaderboard(it), nil
	default:
		var zero T
		return zero, fmt.Errorf("%w: %T", ErrUnknownReportableType, item)
	}
}

// ReportableContext wraps an item with the fields used to order and identify it.
type ReportableContext struct {
	Type              ReportableType
	SubType           string
	Item              Reportable
	BeatmapID         string
	SameBeatmapNumber int
	Time              time.Time
}

// Key returns the round the reportable belongs to.
func (rc ReportableContext) Key() VirtualMatchKey {
	return VirtualMatchKey{BeatmapID: rc.BeatmapID, SameBeatmapNumber: rc.SameBeatmapNumber}
}

type contextBuilder struct{}

func (contextBuilder) GameEvent(e GameEvent) ReportableContext {
	return ReportableContext{
		Type: ReportableGameEvent, SubType: string(e.Type), Item: e,
		BeatmapID: e.BeatmapID, SameBeatmapNumber: e.SameBeatmapNumber, Time: e.Time,
	}
}

func (contextBuilder) Message(m StatusMessage) ReportableContext {
	return ReportableContext{
		Type: ReportableMessage, SubType: string(m.Type), Item: m,
		BeatmapID: m.BeatmapID, SameBeatmapNumber: m.SameBeatmapNumber, Time: m.Time,
	}
}

func (contextBuilder) Leaderboard(l Leaderboard) ReportableContext {
	return ReportableContext{
		Type: ReportableLeaderboard, SubType: LeaderboardSubTypeBattleRoyale, Item: l,
		BeatmapID: l.BeatmapID, SameBeatmapNumber: l.SameBeatmapNumber, Time: l.LeaderboardEventTime,
	}
}

// NewReportableContext wraps item in its context.
func NewReportableContext(item Reportable) (ReportableContext, error) {
	return VisitReportable[ReportableContext](item, contextBuilder{})
}

// ReportableKey is the identity used to decide whether an item was already reported.
type ReportableKey struct {
	Type              ReportableType
	SubType           string
	BeatmapID         string
	SameBeatmapNumber int
	Discriminant      string
}

// String encodes the key as a single stable value for storage uniqueness.
func (k ReportableKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%d|%s", k.Type, k.SubType, k.BeatmapID, k.SameBeatmapNumber, k.Discriminant)
}

type identity struct {
	discriminant string
	ok           bool
}

// identityVisitor derives the type-specific part of a key; ok is false for
// subtypes without a known identity.
type identityVisitor struct {
	typ     ReportableType
	subType string
}

func (v identityVisitor) GameEvent(e GameEvent) identity {
	return identity{e.discriminant(), v.typ == ReportableGameEvent && GameEventType(v.subType).Known()}
}

func (v identityVisitor) Message(m StatusMessage) identity {
	return identity{m.discriminant(), v.typ == ReportableMessage && MessageType(v.subType).Known()}
}

func (v identityVisitor) Leaderboard(Leaderboard) identity {
	// one leaderboard per round and subtype
	return identity{"", v.typ == ReportableLeaderboard && v.subType == LeaderboardSubTypeBattleRoyale}
}

// IdentityKey derives the identity key of a reportable.
func (rc ReportableContext) IdentityKey() (ReportableKey, error) {
	id, err := VisitReportable[identity](rc.Item, identityVisitor{typ: rc.Type, subType: rc.SubType})
	if err != nil {
		return ReportableKey{}, err
	}
	if !id.ok {
		return ReportableKey{}, fmt.Errorf("%w: type %q subtype %q", ErrNoIdentityStrategy, rc.Type, rc.SubType)
	}
	return ReportableKey{
		Type:              rc.Type,
		SubType:           rc.SubType,
		BeatmapID:         rc.BeatmapID,
		SameBeatmapNumber: rc.SameBeatmapNumber,
		Discriminant:      id.discriminant,
	}, nil
}

type reportableContextJSON struct {
	Type              ReportableType  `json:"type"`
	SubType           string          `json:"subType"`
	BeatmapID         string          `json:"beatmapId"`
	SameBeatmapNumber int             `json:"sameBeatmapNumber"`
	Time              time.Time       `json:"time"`
	Item              json.RawMessage `json:"item"`
}

// MarshalJSON encodes the context with its item for the reported history.
func (rc ReportableContext) MarshalJSON() ([]byte, error) {
	item, err := json.Marshal(rc.Item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(reportableContextJSON{
		Type:              rc.Type,
		SubType:           rc.SubType,
		BeatmapID:         rc.BeatmapID,
		SameBeatmapNumber: rc.SameBeatmapNumber,
		Time:              rc.Time,
		Item:              item,
	})
}

// UnmarshalJSON decodes the item according to the context type.
func (rc *ReportableContext) UnmarshalJSON(data []byte) error {
	var raw reportableContextJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var item Reportable
	switch raw.Type {
	case ReportableGameEvent:
		var e GameEvent
		if err := json.Unmarshal(raw.Item, &e); err != nil {
			return fmt.Errorf("decode game event: %w", err)
		}
		item = e
	case ReportableMessage:
		var m StatusMessage
		if err := json.Unmarshal(raw.Item, &m); err != nil {
			return fmt.Errorf("decode message: %w", err)
		}
		item = m
	case ReportableLeaderboard:
		var l Leaderboard
		if err := json.Unmarshal(raw.Item, &l); err != nil {
			return fmt.Errorf("decode leaderboard: %w", err)
		}
		item = l
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportableType, raw.Type)
	}

	*rc = ReportableContext{
		Type:              raw.Type,
		SubType:           raw.SubType,
		Item:              item,
		BeatmapID:         raw.BeatmapID,
		SameBeatmapNumber: raw.SameBeatmapNumber,
		Time:              raw.Time,
	}
	return nil
}
