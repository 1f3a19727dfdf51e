package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscribeCancelClosesChannel(t *testing.T) {
	eventService := NewEventService()
	events, cancel := eventService.Subscribe(990001)

	cancel()

	_, open := <-events
	assert.False(t, open)
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	eventService := NewEventService()
	_, cancel := eventService.Subscribe(990002)

	cancel()
	assert.NotPanics(t, cancel)
}

func TestSubscribeCancelKeepsOtherSubscribers(t *testing.T) {
	eventService := NewEventService()
	first, cancelFirst := eventService.Subscribe(990003)
	second, cancelSecond := eventService.Subscribe(990003)
	defer cancelSecond()

	cancelFirst()

	_, open := <-first
	assert.False(t, open)
	select {
	case _, open := <-second:
		assert.True(t, open)
	default:
	}
}
