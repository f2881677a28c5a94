// Package channel provides the full-duplex message endpoint linking the
// front-end and worker processes. Each process owns one endpoint; sends on
// one side arrive, in order, at the peer's receives.
package channel

import (
    "bufio"
    "context"
    "errors"
    "io"
    "net"
    "os"
    "sync"
    "syscall"
    "time"

    "uipipe/pkg/protocol"
    "uipipe/pkg/protocol/codec"
)

// ErrClosed is returned once the peer has closed its end (or exited) and no
// buffered messages remain, and by operations on a locally closed endpoint.
var ErrClosed = errors.New("channel: closed")

// inboxDepth bounds buffered inbound messages so peer sends stay fast for
// the small payloads this protocol carries.
const inboxDepth = 16

// Endpoint is one side of a linked pair. Exactly one receiver goroutine is
// expected; Send is safe to call from any goroutine.
type Endpoint struct {
    def       codec.Codec
    contentID uint8
    reg       *codec.Registry

    wmu sync.Mutex
    bw  *bufio.Writer

    rmu      sync.Mutex
    peeked   *protocol.Message
    sawClose bool

    inbox   chan *protocol.Message
    readErr error // set before inbox is closed

    closeOnce sync.Once
    done      chan struct{}
    closers   []io.Closer
}

// New builds an endpoint over a read/write pair. def encodes outbound
// payloads; inbound payloads are decoded by whichever registered codec the
// frame header names, falling back to def. The closers are closed with the
// endpoint.
func New(r io.Reader, w io.Writer, def codec.Codec, closers ...io.Closer) *Endpoint {
    reg := codec.NewRegistry()
    reg.Register(def)
    e := &Endpoint{
        def:       def,
        contentID: protocol.ContentID(def.ContentType()),
        reg:       reg,
        bw:        bufio.NewWriter(w),
        inbox:     make(chan *protocol.Message, inboxDepth),
        done:      make(chan struct{}),
        closers:   closers,
    }
    go e.readLoop(bufio.NewReader(r))
    return e
}

// readLoop drains frames from the peer into the inbox until the stream ends.
// It records the terminal error and closes the inbox so receivers observe
// closure instead of hanging on a dead peer.
func (e *Endpoint) readLoop(br *bufio.Reader) {
    defer close(e.inbox)
    for {
        var f protocol.Frame
        if _, err := f.ReadFrom(br); err != nil {
            e.readErr = mapStreamErr(err)
            return
        }
        m, err := e.decode(&f)
        if err != nil {
            e.readErr = err
            return
        }
        select {
        case e.inbox <- m:
        case <-e.done:
            e.readErr = ErrClosed
            return
        }
    }
}

func (e *Endpoint) decode(f *protocol.Frame) (*protocol.Message, error) {
    if f.Header.Kind == protocol.KindClose && len(f.Payload) == 0 {
        return protocol.Close(), nil
    }
    c := e.reg.Get(protocol.ContentTypeOf(f.Header.Content))
    if c == nil {
        c = e.def
    }
    var m protocol.Message
    if err := c.Unmarshal(f.Payload, &m); err != nil {
        return nil, err
    }
    if m.Kind == protocol.KindUnknown {
        m.Kind = f.Header.Kind
    }
    return &m, nil
}

// Send delivers m to the peer's matching receive. It may block briefly while
// the peer's inbox is full, and preserves order with other sends on this
// endpoint.
func (e *Endpoint) Send(m *protocol.Message) error {
    if err := m.Validate(); err != nil {
        return err
    }
    var payload []byte
    if m.Kind != protocol.KindClose {
        b, err := e.def.Marshal(m)
        if err != nil {
            return err
        }
        payload = b
    }
    f := protocol.Frame{
        Header: protocol.Header{
            Version: protocol.Version,
            Kind:    m.Kind,
            Content: e.contentID,
        },
        Payload: payload,
    }
    e.wmu.Lock()
    defer e.wmu.Unlock()
    select {
    case <-e.done:
        return ErrClosed
    default:
    }
    if _, err := f.WriteTo(e.bw); err != nil {
        return mapStreamErr(err)
    }
    if err := e.bw.Flush(); err != nil {
        return mapStreamErr(err)
    }
    return nil
}

// Recv blocks until a message is available, the peer closes, or ctx is done.
// A closed peer yields ErrClosed rather than hanging forever.
func (e *Endpoint) Recv(ctx context.Context) (*protocol.Message, error) {
    e.rmu.Lock()
    if m := e.peeked; m != nil {
        e.peeked = nil
        e.rmu.Unlock()
        return m, nil
    }
    e.rmu.Unlock()
    select {
    case <-ctx.Done():
        return nil, ctx.Err()
    case m, ok := <-e.inbox:
        if !ok {
            return nil, e.closedErr()
        }
        return m, nil
    }
}

// Poll reports whether Recv would return without blocking within d: either a
// message is available or the peer has closed. A zero d checks without
// waiting. A polled message stays buffered for the next Recv.
func (e *Endpoint) Poll(d time.Duration) bool {
    e.rmu.Lock()
    defer e.rmu.Unlock()
    if e.peeked != nil || e.sawClose {
        return true
    }
    if d <= 0 {
        select {
        case m, ok := <-e.inbox:
            return e.note(m, ok)
        default:
            return false
        }
    }
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case m, ok := <-e.inbox:
        return e.note(m, ok)
    case <-t.C:
        return false
    }
}

// note records a poll result under rmu. A closed inbox still counts as ready
// so pollers go on to observe ErrClosed from Recv.
func (e *Endpoint) note(m *protocol.Message, ok bool) bool {
    if !ok {
        e.sawClose = true
        return true
    }
    e.peeked = m
    return true
}

// Close releases the endpoint and its underlying streams. Safe to call more
// than once.
func (e *Endpoint) Close() error {
    var err error
    e.closeOnce.Do(func() {
        close(e.done)
        for _, c := range e.closers {
            if cerr := c.Close(); cerr != nil && err == nil {
                err = cerr
            }
        }
    })
    return err
}

func (e *Endpoint) closedErr() error {
    if e.readErr != nil {
        return e.readErr
    }
    return ErrClosed
}

// mapStreamErr folds stream-termination errors into ErrClosed so callers can
// treat a dead peer like a received close sentinel.
func mapStreamErr(err error) error {
    if err == nil {
        return nil
    }
    if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
        errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) ||
        errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
        return ErrClosed
    }
    return err
}
