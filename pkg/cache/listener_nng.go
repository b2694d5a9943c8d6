//go:build nng
// +build nng

package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/trestleaml/networkengine/pkg/logging"
)

// NNGListener subscribes to relationship-change notifications on a
// mangos SUB socket and republishes them as invalidations on a Bus.
type NNGListener struct {
	endpoint string
	bus      *Bus
	logger   logging.Logger

	sock      mangos.Socket
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewNNGListener creates a listener for the given SUB endpoint.
func NewNNGListener(endpoint string, bus *Bus, logger logging.Logger) *NNGListener {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &NNGListener{
		endpoint: endpoint,
		bus:      bus,
		logger:   logger.With(logging.Component("cache-nng-listener")),
		stopCh:   make(chan struct{}),
	}
}

// Start dials the endpoint and begins forwarding events.
func (l *NNGListener) Start() error {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if l.running {
		return fmt.Errorf("listener already running")
	}

	sock, err := sub.NewSocket()
	if err != nil {
		return fmt.Errorf("create SUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte("")); err != nil {
		sock.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	// Bounded receive wait so Stop is honoured promptly.
	if err := sock.SetOption(mangos.OptionRecvDeadline, time.Second); err != nil {
		sock.Close()
		return fmt.Errorf("set recv deadline: %w", err)
	}
	if err := sock.Dial(l.endpoint); err != nil {
		sock.Close()
		return fmt.Errorf("dial %s: %w", l.endpoint, err)
	}

	l.sock = sock
	l.running = true

	l.wg.Add(1)
	go l.receiveLoop()

	l.logger.Info("invalidation listener started", logging.String("endpoint", l.endpoint))
	return nil
}

func (l *NNGListener) receiveLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		payload, err := l.sock.Recv()
		if err != nil {
			if err == mangos.ErrRecvTimeout {
				continue
			}
			select {
			case <-l.stopCh:
				return
			default:
				l.logger.Warn("receive failed", logging.Error(err))
				continue
			}
		}

		var ev Invalidation
		if err := json.Unmarshal(payload, &ev); err != nil {
			l.logger.Warn("undecodable invalidation dropped", logging.Error(err))
			continue
		}
		l.bus.Publish(ev)
	}
}

// Stop closes the socket and waits for the receive loop to exit.
func (l *NNGListener) Stop() {
	l.runningMu.Lock()
	defer l.runningMu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	close(l.stopCh)

	if l.sock != nil {
		l.sock.Close()
	}
	l.wg.Wait()
	l.logger.Info("invalidation listener stopped")
}
