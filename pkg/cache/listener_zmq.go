//go:build zmq
// +build zmq

package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	zmq "github.com/pebbe/zmq4"

	"github.com/trestleaml/networkengine/pkg/logging"
)

// ZMQListener subscribes to relationship-change notifications on a
// ZeroMQ PUB endpoint and republishes them as invalidations on a Bus.
// Messages are JSON-encoded Invalidation payloads under the configured
// topic prefix.
type ZMQListener struct {
	endpoint string
	topic    string
	bus      *Bus
	logger   logging.Logger

	subscriber *zmq.Socket
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	runningMu  sync.Mutex
}

// NewZMQListener creates a listener for the given SUB endpoint and topic.
func NewZMQListener(endpoint, topic string, bus *Bus, logger logging.Logger) *ZMQListener {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &ZMQListener{
		endpoint: endpoint,
		topic:    topic,
		bus:      bus,
		logger:   logger.With(logging.Component("cache-zmq-listener")),
		stopCh:   make(chan struct{}),
	}
}

// Start connects the SUB socket and begins forwarding events.
func (l *ZMQListener) Start() error {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if l.running {
		return fmt.Errorf("listener already running")
	}

	subscriber, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return fmt.Errorf("create SUB socket: %w", err)
	}
	if err := subscriber.Connect(l.endpoint); err != nil {
		subscriber.Close()
		return fmt.Errorf("connect %s: %w", l.endpoint, err)
	}
	if err := subscriber.SetSubscribe(l.topic); err != nil {
		subscriber.Close()
		return fmt.Errorf("subscribe %q: %w", l.topic, err)
	}

	l.subscriber = subscriber
	l.running = true

	l.wg.Add(1)
	go l.receiveLoop()

	l.logger.Info("invalidation listener started",
		logging.String("endpoint", l.endpoint),
		logging.String("topic", l.topic))
	return nil
}

func (l *ZMQListener) receiveLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		parts, err := l.subscriber.RecvMessageBytes(0)
		if err != nil {
			select {
			case <-l.stopCh:
				return
			default:
				l.logger.Warn("receive failed", logging.Error(err))
				continue
			}
		}
		// Topic frame first, payload last.
		payload := parts[len(parts)-1]

		var ev Invalidation
		if err := json.Unmarshal(payload, &ev); err != nil {
			l.logger.Warn("undecodable invalidation dropped", logging.Error(err))
			continue
		}
		l.bus.Publish(ev)
	}
}

// Stop closes the socket and waits for the receive loop to exit.
func (l *ZMQListener) Stop() {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	close(l.stopCh)

	if l.subscriber != nil {
		l.subscriber.Close()
	}
	l.wg.Wait()
	l.logger.Info("invalidation listener stopped")
}
