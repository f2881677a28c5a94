package ui

import (
    "context"
    "errors"
    "strings"
    "sync"
    "testing"
    "time"

    "uipipe/pkg/channel"
    "uipipe/pkg/protocol"
    "uipipe/pkg/protocol/codec"
)

type recordRenderer struct {
    mu   sync.Mutex
    msgs []*protocol.Message
}

func (r *recordRenderer) Show(m *protocol.Message) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.msgs = append(r.msgs, m)
}

func (r *recordRenderer) count() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return len(r.msgs)
}

func (r *recordRenderer) last() *protocol.Message {
    r.mu.Lock()
    defer r.mu.Unlock()
    if len(r.msgs) == 0 {
        return nil
    }
    return r.msgs[len(r.msgs)-1]
}

func startUI(t *testing.T, events <-chan string) (*channel.Endpoint, *recordRenderer, <-chan error) {
    t.Helper()
    frontEP, workerEP := channel.Pair(codec.JSON())
    t.Cleanup(func() {
        _ = frontEP.Close()
        _ = workerEP.Close()
    })
    rec := &recordRenderer{}
    u := New(frontEP, events, rec, Options{PollInterval: 5 * time.Millisecond})
    done := make(chan error, 1)
    go func() { done <- u.Run(context.Background()) }()
    return workerEP, rec, done
}

func waitDone(t *testing.T, done <-chan error) error {
    t.Helper()
    select {
    case err := <-done:
        return err
    case <-time.After(5 * time.Second):
        t.Fatal("front end did not terminate")
        return nil
    }
}

func testCtx(t *testing.T) context.Context {
    t.Helper()
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    t.Cleanup(cancel)
    return ctx
}

func TestUserEventGoesOut(t *testing.T) {
    events := make(chan string)
    workerEP, _, done := startUI(t, events)
    ctx := testCtx(t)

    events <- "hello"
    m, err := workerEP.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if m.Kind != protocol.KindInput || m.Input != "hello" {
        t.Fatalf("unexpected event: %#v", m)
    }
    if m.Time == "" {
        t.Fatal("event should carry a timestamp")
    }

    if err := workerEP.Send(protocol.Close()); err != nil { t.Fatalf("close: %v", err) }
    if err := waitDone(t, done); err != nil {
        t.Fatalf("run: %v", err)
    }
}

func TestIdleDrainRendersUpdates(t *testing.T) {
    events := make(chan string)
    workerEP, rec, done := startUI(t, events)
    ctx := testCtx(t)

    events <- "hello"
    m, err := workerEP.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if err := workerEP.Send(protocol.Ack(m)); err != nil { t.Fatalf("ack: %v", err) }

    deadline := time.Now().Add(2 * time.Second)
    for rec.count() == 0 && time.Now().Before(deadline) {
        time.Sleep(5 * time.Millisecond)
    }
    got := rec.last()
    if got == nil || got.Kind != protocol.KindAck || got.Data.Input != "hello" {
        t.Fatalf("renderer got %#v", got)
    }

    _ = workerEP.Send(protocol.Close())
    _ = waitDone(t, done)
}

func TestCloseSentinelAcknowledged(t *testing.T) {
    events := make(chan string)
    workerEP, _, done := startUI(t, events)
    ctx := testCtx(t)

    if err := workerEP.Send(protocol.Close()); err != nil { t.Fatalf("close: %v", err) }
    if err := waitDone(t, done); err != nil {
        t.Fatalf("run: %v", err)
    }
    // The front end acknowledges shutdown with its own sentinel.
    m, err := workerEP.Recv(ctx)
    if err != nil { t.Fatalf("recv ack-of-close: %v", err) }
    if m.Kind != protocol.KindClose {
        t.Fatalf("want close sentinel, got %#v", m)
    }
}

func TestEventSourceClosureClosesChannel(t *testing.T) {
    events := make(chan string)
    workerEP, _, done := startUI(t, events)
    ctx := testCtx(t)

    close(events) // the user closed the window
    if err := waitDone(t, done); err != nil {
        t.Fatalf("run: %v", err)
    }
    m, err := workerEP.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if m.Kind != protocol.KindClose {
        t.Fatalf("want close sentinel, got %#v", m)
    }
}

func TestWorkerVanishingStopsFrontEnd(t *testing.T) {
    events := make(chan string)
    workerEP, _, done := startUI(t, events)

    _ = workerEP.Close()
    if err := waitDone(t, done); err != nil && !errors.Is(err, channel.ErrClosed) {
        t.Fatalf("run: %v", err)
    }
}

func TestWriterRenderer(t *testing.T) {
    var sb strings.Builder
    r := NewWriterRenderer(&sb)
    r.Show(protocol.Ack(&protocol.Message{Kind: protocol.KindInput, Time: "10:00:00", Input: "hello"}))
    out := sb.String()
    if !strings.Contains(out, "10:00:00") || !strings.Contains(out, "hello") {
        t.Fatalf("unexpected rendering: %q", out)
    }
}
