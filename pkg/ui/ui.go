// Package ui runs the front-end loop of the two-process split. It carries no
// business logic: user events go out over the channel, and whatever display
// updates the worker sends back are handed to a Renderer. Inbound messages
// are drained during idle ticks so the event loop is never starved.
package ui

import (
    "context"
    "errors"
    "fmt"
    "io"
    "time"

    "go.uber.org/zap"

    "uipipe/pkg/channel"
    "uipipe/pkg/protocol"
)

// Renderer applies a display update sent by the worker.
type Renderer interface {
    Show(m *protocol.Message)
}

// NewWriterRenderer renders updates as human-readable lines on w.
func NewWriterRenderer(w io.Writer) Renderer { return writerRenderer{w} }

type writerRenderer struct{ w io.Writer }

func (r writerRenderer) Show(m *protocol.Message) {
    if m.Kind == protocol.KindAck && m.Data != nil {
        fmt.Fprintf(r.w, "[%s] ack: %q\n", m.Data.Time, m.Data.Input)
        return
    }
    fmt.Fprintf(r.w, "%s\n", m)
}

// Options tune a UI. Zero values fall back to defaults.
type Options struct {
    // PollInterval spaces idle drains of the inbound channel. Default 100ms.
    PollInterval time.Duration
    Logger       *zap.Logger
}

const defaultPoll = 100 * time.Millisecond

// UI drives the front-end loop over one channel endpoint. User events arrive
// as text on the events channel; closing that channel plays the role of the
// user closing the window.
type UI struct {
    ep     *channel.Endpoint
    events <-chan string
    render Renderer
    poll   time.Duration
    log    *zap.Logger
}

// New builds a UI around an endpoint, an event source and a renderer.
func New(ep *channel.Endpoint, events <-chan string, r Renderer, opts Options) *UI {
    if opts.PollInterval <= 0 {
        opts.PollInterval = defaultPoll
    }
    if opts.Logger == nil {
        opts.Logger = zap.L()
    }
    return &UI{
        ep:     ep,
        events: events,
        render: r,
        poll:   opts.PollInterval,
        log:    opts.Logger.Named("ui"),
    }
}

// Run blocks until the worker signals close, the event source closes, or ctx
// is done. After Run returns, nothing further is sent on the endpoint.
func (u *UI) Run(ctx context.Context) error {
    u.log.Info("front end started")
    idle := time.NewTicker(u.poll)
    defer idle.Stop()
    for {
        select {
        case <-ctx.Done():
            return u.close()

        case txt, ok := <-u.events:
            if !ok {
                u.log.Info("event source closed, shutting down")
                return u.close()
            }
            m := protocol.Input(time.Now(), txt)
            u.log.Info("sending event", zap.Stringer("msg", m))
            if err := u.ep.Send(m); err != nil {
                if errors.Is(err, channel.ErrClosed) {
                    u.log.Info("channel closed by worker, shutting down")
                    return nil
                }
                return err
            }

        case <-idle.C:
            done, err := u.drain(ctx)
            if done {
                return err
            }
        }
    }
}

// drain consumes every currently available inbound message. It reports done
// when the worker has signalled (or suffered) termination.
func (u *UI) drain(ctx context.Context) (bool, error) {
    for u.ep.Poll(0) {
        m, err := u.ep.Recv(ctx)
        if err != nil {
            if errors.Is(err, channel.ErrClosed) {
                u.log.Info("channel closed by worker, shutting down")
                return true, nil
            }
            return true, err
        }
        if m.Kind == protocol.KindClose {
            u.log.Info("got close sentinel from worker, shutting down")
            return true, u.close()
        }
        u.log.Debug("got update", zap.Stringer("msg", m))
        u.render.Show(m)
    }
    return false, nil
}

// close acknowledges shutdown by sending the close sentinel once. A peer
// that is already gone is not an error here.
func (u *UI) close() error {
    if err := u.ep.Send(protocol.Close()); err != nil && !errors.Is(err, channel.ErrClosed) {
        return err
    }
    return nil
}
