package events

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockObserver struct {
	mock.Mock
	mu       sync.Mutex
	received []Event
}

func (m *MockObserver) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockObserver) Update(event Event) error {
	m.mu.Lock()
	m.received = append(m.received, event)
	m.mu.Unlock()
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockObserver) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}

func TestDispatcher_NotifyCallsAllObservers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(1, 4, logger)
	defer d.Shutdown()

	first := &MockObserver{}
	first.On("Name").Return("first")
	first.On("Update", mock.Anything).Return(nil)
	second := &MockObserver{}
	second.On("Name").Return("second")
	second.On("Update", mock.Anything).Return(nil)

	d.Subscribe(first)
	d.Subscribe(second)

	d.Notify(New(PostLiked, 1, 2, 3))

	assert.Equal(t, 1, first.Count())
	assert.Equal(t, 1, second.Count())
}

func TestDispatcher_ObserverErrorIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	d := NewDispatcher(1, 4, logger)
	defer d.Shutdown()

	failing := &MockObserver{}
	failing.On("Name").Return("failing")
	failing.On("Update", mock.Anything).Return(errors.New("broker down"))
	d.Subscribe(failing)

	d.Notify(New(MessageSent, 1, 2, 9))

	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "observer update failed", entry.Message)
		assert.Equal(t, "failing", entry.Data["observer"])
	}
}

func TestDispatcher_PublishIsDeliveredAsync(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(2, 16, logger)

	obs := &MockObserver{}
	obs.On("Name").Return("counter")
	obs.On("Update", mock.Anything).Return(nil)
	d.Subscribe(obs)

	for i := 0; i < 10; i++ {
		d.Publish(New(UserFollowed, uint64(i), 99, 0))
	}

	assert.Eventually(t, func() bool { return obs.Count() == 10 }, time.Second, 5*time.Millisecond)
	d.Shutdown()
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(1, 4, logger)
	defer d.Shutdown()

	obs := &MockObserver{}
	obs.On("Name").Return("gone")
	d.Subscribe(obs)
	d.Unsubscribe(obs)

	d.Notify(New(PostCreated, 1, 1, 1))
	assert.Equal(t, 0, obs.Count())
}

func TestDispatcher_PublishAfterShutdownIsDropped(t *testing.T) {
	logger, _ := test.NewNullLogger()
	d := NewDispatcher(1, 4, logger)

	obs := &MockObserver{}
	obs.On("Name").Return("late")
	obs.On("Update", mock.Anything).Return(nil)
	d.Subscribe(obs)
	d.Shutdown()

	d.Publish(New(PostCreated, 1, 1, 1))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, obs.Count())
}

func TestDispatcher_PublishRacingShutdownIsDeliveredOrLogged(t *testing.T) {
	const publishers, perPublisher = 8, 50

	for round := 0; round < 20; round++ {
		logger, hook := test.NewNullLogger()
		d := NewDispatcher(2, publishers*perPublisher, logger)

		obs := &MockObserver{}
		obs.On("Name").Return("counter")
		obs.On("Update", mock.Anything).Return(nil)
		d.Subscribe(obs)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for p := 0; p < publishers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				<-start
				for i := 0; i < perPublisher; i++ {
					d.Publish(New(PostLiked, uint64(p), uint64(i), 0))
				}
			}(p)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			d.Shutdown()
		}()
		close(start)
		wg.Wait()

		dropped := 0
		for _, e := range hook.AllEntries() {
			if e.Message == "dispatcher closed, dropping event" {
				dropped++
			}
		}
		assert.Equal(t, publishers*perPublisher, obs.Count()+dropped, "round %d", round)
	}
}
