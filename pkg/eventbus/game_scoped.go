package eventbus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PublishWithGameScope publishes messages on {baseTopic}.{gameID} so consumers
// can follow a single game or every game with a wildcard:
//   - "multiplayer.reportable.leaderboard.v1.*" catches all games
//   - "multiplayer.reportable.leaderboard.v1.42" catches game 42
func PublishWithGameScope(pub message.Publisher, baseTopic string, gameID string, msgs ...*message.Message) error {
	if gameID == "" {
		return fmt.Errorf("gameID cannot be empty for game-scoped publish")
	}
	return pub.Publish(FormatGameScopedTopic(baseTopic, gameID), msgs...)
}

// FormatGameScopedTopic formats a topic with a game id suffix without publishing.
func FormatGameScopedTopic(baseTopic string, gameID string) string {
	return fmt.Sprintf("%s.%s", baseTopic, gameID)
}
