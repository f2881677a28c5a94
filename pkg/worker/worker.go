// Package worker runs the back-end loop of the two-process split: it listens
// for events from the front end, replies to each one, and emits a periodic
// liveness tick, until either side signals shutdown with the close sentinel.
package worker

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "time"

    "go.uber.org/zap"

    "uipipe/pkg/channel"
    "uipipe/pkg/protocol"
)

// Options tune a Worker. Zero values fall back to defaults.
type Options struct {
    // TickInterval spaces liveness ticks. Default 5s.
    TickInterval time.Duration
    // QuitKeyword is the reserved input text that makes the worker tell the
    // front end to close. Default "quit".
    QuitKeyword string
    Logger      *zap.Logger
}

const (
    defaultTick    = 5 * time.Second
    defaultKeyword = "quit"
)

// Worker drives the back-end loop over one channel endpoint.
type Worker struct {
    ep       *channel.Endpoint
    tick     time.Duration
    quitWord string
    log      *zap.Logger

    running atomic.Bool
    state   atomic.Int32

    quit chan struct{} // single-slot shutdown signal

    errOnce sync.Once
    runErr  error
}

// New builds a Worker around an endpoint.
func New(ep *channel.Endpoint, opts Options) *Worker {
    if opts.TickInterval <= 0 {
        opts.TickInterval = defaultTick
    }
    if opts.QuitKeyword == "" {
        opts.QuitKeyword = defaultKeyword
    }
    if opts.Logger == nil {
        opts.Logger = zap.L()
    }
    return &Worker{
        ep:       ep,
        tick:     opts.TickInterval,
        quitWord: opts.QuitKeyword,
        log:      opts.Logger.Named("worker"),
        quit:     make(chan struct{}, 1),
    }
}

// State returns the current lifecycle state.
func (w *Worker) State() State { return State(w.state.Load()) }

// Running reports the process-wide running flag shared by the loop's tasks.
func (w *Worker) Running() bool { return w.running.Load() }

// Run starts the listener and ticker, then blocks until a shutdown signal or
// ctx cancellation. Both tasks have exited by the time Run returns.
func (w *Worker) Run(ctx context.Context) error {
    w.state.Store(int32(StateStarting))
    w.log.Info("starting")
    w.running.Store(true)

    ictx, cancel := context.WithCancel(ctx)
    defer cancel()

    var wg sync.WaitGroup
    wg.Add(2)
    go func() {
        defer wg.Done()
        w.listen(ictx)
    }()
    go func() {
        defer wg.Done()
        w.ticker(ictx)
    }()
    w.state.Store(int32(StateRunning))

    select {
    case <-w.quit:
    case <-ctx.Done():
        w.running.Store(false)
    }

    w.state.Store(int32(StateDraining))
    cancel()
    wg.Wait()
    w.state.Store(int32(StateTerminated))
    w.log.Info("terminated")
    return w.runErr
}

// signalQuit posts the shutdown signal at most once.
func (w *Worker) signalQuit() {
    select {
    case w.quit <- struct{}{}:
    default:
    }
}

func (w *Worker) fail(err error) {
    w.errOnce.Do(func() { w.runErr = err })
}

// listen drains inbound messages and dispatches each one. The blocking
// receive runs on this dedicated goroutine so the rest of the loop is never
// stalled by the transport.
func (w *Worker) listen(ctx context.Context) {
    for w.running.Load() {
        m, err := w.ep.Recv(ctx)
        if err != nil {
            switch {
            case errors.Is(err, channel.ErrClosed):
                // Peer gone without a sentinel; treat like receiving close.
                w.log.Info("channel closed by peer, quitting")
                w.running.Store(false)
                w.signalQuit()
            case ctx.Err() != nil:
                // Cancelled from Run's teardown.
            default:
                w.log.Error("receive failed", zap.Error(err))
                w.fail(err)
                w.running.Store(false)
                w.signalQuit()
            }
            return
        }
        if w.dispatch(m) {
            return
        }
    }
}

// dispatch handles one inbound message and reports whether listening should
// stop. Exactly one reply is sent per ordinary message before the next
// inbound message is read.
func (w *Worker) dispatch(m *protocol.Message) (stop bool) {
    switch {
    case m.Kind == protocol.KindClose:
        w.log.Info("got close sentinel from front end, quitting")
        w.running.Store(false)
        w.signalQuit()
        return true

    case m.Kind == protocol.KindInput && m.Input == w.quitWord:
        w.log.Info("got quit keyword, telling front end to close",
            zap.String("keyword", w.quitWord))
        if err := w.ep.Send(protocol.Close()); err != nil {
            w.log.Warn("close notify failed", zap.Error(err))
        }
        w.running.Store(false)
        w.signalQuit()
        return true

    default:
        w.log.Info("got event", zap.Stringer("msg", m))
        reply := protocol.Ack(m)
        if err := w.ep.Send(reply); err != nil {
            w.log.Error("reply failed", zap.Error(err))
            w.fail(err)
            w.running.Store(false)
            w.signalQuit()
            return true
        }
        w.log.Debug("reply sent", zap.Stringer("msg", reply))
        return false
    }
}

// ticker emits a periodic liveness line while the running flag holds. It is
// cancelled via ctx as soon as Run begins draining.
func (w *Worker) ticker(ctx context.Context) {
    t := time.NewTicker(w.tick)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            w.log.Debug("ticker cancelled")
            return
        case <-t.C:
            if !w.running.Load() {
                w.log.Info("ticker finished, running flag cleared")
                return
            }
            w.log.Info("ticker: event loop is live")
        }
    }
}
