package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbp-hq/governance/pkg/eventbus"
)

type submittedEvent struct {
	RequestID int64
}

type decidedEvent struct {
	RequestID int64
	Approved  bool
}

func newTestBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

func TestPublish_MatchesHandlerByArgumentType(t *testing.T) {
	t.Parallel()

	bus := newTestBus()

	var got []int64
	bus.Subscribe(func(ev *submittedEvent) {
		got = append(got, ev.RequestID)
	})

	bus.Publish(&submittedEvent{RequestID: 7})
	bus.Publish(&decidedEvent{RequestID: 8, Approved: true})

	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0])
}

func TestPublish_MultipleSubscribers(t *testing.T) {
	t.Parallel()

	bus := newTestBus()

	calls := 0
	bus.Subscribe(func(ev *decidedEvent) { calls++ })
	bus.Subscribe(func(ev *decidedEvent) { calls++ })

	bus.Publish(&decidedEvent{RequestID: 1})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, bus.SubscribersCount())
}

func TestPublish_RecoversFromHandlerPanic(t *testing.T) {
	t.Parallel()

	bus := newTestBus()

	reached := false
	bus.Subscribe(func(ev *submittedEvent) { panic("boom") })
	bus.Subscribe(func(ev *submittedEvent) { reached = true })

	assert.NotPanics(t, func() {
		bus.Publish(&submittedEvent{RequestID: 2})
	})
	assert.True(t, reached)
}

func TestUnsubscribeAndClear(t *testing.T) {
	t.Parallel()

	bus := newTestBus()

	handler := func(ev *submittedEvent) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Equal(t, 0, bus.SubscribersCount())

	bus.Subscribe(handler)
	bus.Subscribe(func(ev *decidedEvent) {})
	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	handler := func(ev *submittedEvent) {}
	assert.True(t, eventbus.MatchSignature(handler, []interface{}{&submittedEvent{}}))
	assert.False(t, eventbus.MatchSignature(handler, []interface{}{&decidedEvent{}}))
	assert.False(t, eventbus.MatchSignature(handler, []interface{}{&submittedEvent{}, &decidedEvent{}}))
	assert.False(t, eventbus.MatchSignature("not a func", []interface{}{&submittedEvent{}}))
}
