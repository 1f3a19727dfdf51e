package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"battlescore/config"
	"battlescore/metrics"

	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	EventParticipantCreated EventType = "PARTICIPANT_CREATED"
	EventParticipantUpdated EventType = "PARTICIPANT_UPDATED"
	EventParticipantDeleted EventType = "PARTICIPANT_DELETED"
	EventMatchCreated       EventType = "MATCH_CREATED"
	EventMatchUpdated       EventType = "MATCH_UPDATED"
	EventMatchDeleted       EventType = "MATCH_DELETED"
	EventScoreUpdated       EventType = "SCORE_UPDATED"
	EventScoreDeleted       EventType = "SCORE_DELETED"
	EventStandingsUpdated   EventType = "STANDINGS_UPDATED"
	EventTournamentStarted  EventType = "TOURNAMENT_STARTED"
)

// TournamentEvent is what goes over the per-tournament Kafka topic and the
// websocket feed.
type TournamentEvent struct {
	Type         EventType `json:"type"`
	TournamentId int       `json:"tournament_id"`
	Payload      any       `json:"payload,omitempty"`
}

// EventService fans tournament events out to in-process subscribers and to
// the per-tournament Kafka topic. A single instance is shared between the
// controllers and the background jobs.
type EventService struct {
	mu          sync.Mutex
	writers     map[int]*kafka.Writer
	subscribers map[int]map[chan TournamentEvent]struct{}
}

var (
	eventService     *EventService
	eventServiceOnce sync.Once
)

func NewEventService() *EventService {
	eventServiceOnce.Do(func() {
		eventService = &EventService{
			writers:     make(map[int]*kafka.Writer),
			subscribers: make(map[int]map[chan TournamentEvent]struct{}),
		}
	})
	return eventService
}

// Subscribe returns a channel receiving all events for the tournament and a
// cancel function. Slow subscribers drop events instead of blocking the
// publisher. Cancel closes the channel so a consumer ranging over it
// terminates; calling it more than once is fine.
func (e *EventService) Subscribe(tournamentId int) (chan TournamentEvent, func()) {
	channel := make(chan TournamentEvent, 64)
	e.mu.Lock()
	if _, ok := e.subscribers[tournamentId]; !ok {
		e.subscribers[tournamentId] = make(map[chan TournamentEvent]struct{})
	}
	e.subscribers[tournamentId][channel] = struct{}{}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		if subscribers, ok := e.subscribers[tournamentId]; ok {
			if _, subscribed := subscribers[channel]; subscribed {
				delete(subscribers, channel)
				close(channel)
			}
			if len(subscribers) == 0 {
				delete(e.subscribers, tournamentId)
			}
		}
		e.mu.Unlock()
	}
	return channel, cancel
}

// Publish hands the event to every subscriber and writes it to Kafka. Kafka
// being unavailable is logged, not fatal; live websocket clients still get
// their update.
func (e *EventService) Publish(ctx context.Context, event TournamentEvent) {
	metrics.EventsPublishedCounter.WithLabelValues(string(event.Type)).Inc()
	e.mu.Lock()
	for channel := range e.subscribers[event.TournamentId] {
		select {
		case channel <- event:
		default:
		}
	}
	e.mu.Unlock()

	serialized, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to serialize tournament event", "error", err)
		return
	}
	writer, err := e.writer(event.TournamentId)
	if err != nil {
		slog.Debug("kafka writer unavailable", "error", err)
		return
	}
	if err := writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(event.Type)),
		Value: serialized,
	}); err != nil {
		slog.Error("failed to write tournament event to kafka", "error", err, "tournamentId", event.TournamentId)
	}
}

func (e *EventService) writer(tournamentId int) (*kafka.Writer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if writer, ok := e.writers[tournamentId]; ok {
		return writer, nil
	}
	if err := config.CreateTopic(tournamentId); err != nil {
		return nil, err
	}
	writer, err := config.GetWriter(tournamentId)
	if err != nil {
		return nil, err
	}
	e.writers[tournamentId] = writer
	return writer, nil
}

// Close shuts down all Kafka writers.
func (e *EventService) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for tournamentId, writer := range e.writers {
		if err := writer.Close(); err != nil {
			slog.Error("failed to close kafka writer", "error", err, "tournamentId", tournamentId)
		}
		delete(e.writers, tournamentId)
	}
}
