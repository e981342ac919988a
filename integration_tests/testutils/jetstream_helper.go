package testutils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ResetJetStreamState purges all messages from JetStream streams
func (env *TestEnvironment) ResetJetStreamState(ctx context.Context, streamNames ...string) error {
	if env.JetStream == nil {
		return fmt.Errorf("JetStream context is nil")
	}

	for _, streamName := range streamNames {
		stream, err := env.JetStream.Stream(ctx, streamName)
		if err != nil {
			// Stream doesn't exist yet, skip
			if errors.Is(err, jetstream.ErrStreamNotFound) {
				continue
			}
			log.Printf("Warning: failed to access stream %s: %v", streamName, err)
			continue
		}

		// Purge all messages from the stream (this preserves consumers)
		if err := stream.Purge(ctx); err != nil {
			log.Printf("Warning: failed to purge stream %s: %v", streamName, err)
		}
	}

	return nil
}

// StreamMessageCount returns the number of messages on subject held by the stream.
func (env *TestEnvironment) StreamMessageCount(ctx context.Context, streamName, subject string) (uint64, error) {
	stream, err := env.JetStream.Stream(ctx, streamName)
	if err != nil {
		return 0, err
	}
	info, err := stream.Info(ctx, jetstream.WithSubjectFilter(subject))
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, n := range info.State.Subjects {
		total += n
	}
	return total, nil
}

// WaitForStreamMessages polls until the stream holds at least want messages on subject.
func (env *TestEnvironment) WaitForStreamMessages(ctx context.Context, streamName, subject string, want uint64, timeout time.Duration) (uint64, error) {
	deadline := time.Now().Add(timeout)
	var got uint64
	for time.Now().Before(deadline) {
		n, err := env.StreamMessageCount(ctx, streamName, subject)
		if err == nil {
			got = n
			if got >= want {
				return got, nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return got, fmt.Errorf("stream %s has %d messages on %s after %v, want %d", streamName, got, subject, timeout, want)
}
