package channel

import (
    "context"
    "errors"
    "fmt"
    "testing"
    "time"

    "uipipe/pkg/protocol"
    "uipipe/pkg/protocol/codec"
)

func testCtx(t *testing.T) context.Context {
    t.Helper()
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    t.Cleanup(cancel)
    return ctx
}

func TestSendRecvOrder(t *testing.T) {
    a, b := Pair(codec.JSON())
    defer a.Close()
    defer b.Close()
    ctx := testCtx(t)

    for i := 0; i < 5; i++ {
        m := &protocol.Message{Kind: protocol.KindInput, Input: fmt.Sprintf("msg-%d", i)}
        if err := a.Send(m); err != nil { t.Fatalf("send %d: %v", i, err) }
    }
    for i := 0; i < 5; i++ {
        m, err := b.Recv(ctx)
        if err != nil { t.Fatalf("recv %d: %v", i, err) }
        if want := fmt.Sprintf("msg-%d", i); m.Input != want {
            t.Fatalf("out of order: got %q, want %q", m.Input, want)
        }
    }
}

func TestBothDirections(t *testing.T) {
    a, b := Pair(codec.JSON())
    defer a.Close()
    defer b.Close()
    ctx := testCtx(t)

    if err := a.Send(protocol.Input(time.Now(), "ping")); err != nil { t.Fatalf("send: %v", err) }
    m, err := b.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if err := b.Send(protocol.Ack(m)); err != nil { t.Fatalf("reply: %v", err) }
    r, err := a.Recv(ctx)
    if err != nil { t.Fatalf("recv reply: %v", err) }
    if r.Kind != protocol.KindAck || r.Data == nil || r.Data.Input != "ping" {
        t.Fatalf("unexpected reply: %#v", r)
    }
}

func TestCBORPayloads(t *testing.T) {
    c, err := codec.CBOR()
    if err != nil { t.Fatalf("cbor: %v", err) }
    a, b := Pair(c)
    defer a.Close()
    defer b.Close()
    ctx := testCtx(t)

    if err := a.Send(protocol.Input(time.Now(), "hello")); err != nil { t.Fatalf("send: %v", err) }
    m, err := b.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if m.Kind != protocol.KindInput || m.Input != "hello" {
        t.Fatalf("unexpected message: %#v", m)
    }
}

func TestPollDoesNotConsume(t *testing.T) {
    a, b := Pair(codec.JSON())
    defer a.Close()
    defer b.Close()
    ctx := testCtx(t)

    if b.Poll(0) {
        t.Fatal("poll on empty channel should be false")
    }
    if err := a.Send(protocol.Input(time.Now(), "x")); err != nil { t.Fatalf("send: %v", err) }
    if !b.Poll(time.Second) {
        t.Fatal("poll should see the message")
    }
    if !b.Poll(0) {
        t.Fatal("polled message must stay available")
    }
    m, err := b.Recv(ctx)
    if err != nil { t.Fatalf("recv: %v", err) }
    if m.Input != "x" { t.Fatalf("unexpected message: %#v", m) }
    if b.Poll(0) {
        t.Fatal("channel should be empty again")
    }
}

func TestPollTimeout(t *testing.T) {
    _, b := Pair(codec.JSON())
    defer b.Close()
    start := time.Now()
    if b.Poll(20 * time.Millisecond) {
        t.Fatal("poll should time out")
    }
    if time.Since(start) < 20*time.Millisecond {
        t.Fatal("poll returned before the timeout")
    }
}

func TestPeerCloseUnblocksRecv(t *testing.T) {
    a, b := Pair(codec.JSON())
    defer b.Close()
    ctx := testCtx(t)

    errCh := make(chan error, 1)
    go func() {
        _, err := b.Recv(ctx)
        errCh <- err
    }()
    time.Sleep(10 * time.Millisecond) // let the receiver block
    _ = a.Close()

    select {
    case err := <-errCh:
        if !errors.Is(err, ErrClosed) {
            t.Fatalf("want ErrClosed, got %v", err)
        }
    case <-ctx.Done():
        t.Fatal("recv did not unblock after peer close")
    }
}

func TestBufferedMessagesSurviveClose(t *testing.T) {
    a, b := Pair(codec.JSON())
    defer b.Close()
    ctx := testCtx(t)

    if err := a.Send(protocol.Input(time.Now(), "last")); err != nil { t.Fatalf("send: %v", err) }
    // Wait for delivery into b's inbox before closing the writer side.
    if !b.Poll(time.Second) {
        t.Fatal("message did not arrive")
    }
    _ = a.Close()

    m, err := b.Recv(ctx)
    if err != nil { t.Fatalf("recv buffered: %v", err) }
    if m.Input != "last" { t.Fatalf("unexpected message: %#v", m) }
    if _, err := b.Recv(ctx); !errors.Is(err, ErrClosed) {
        t.Fatalf("want ErrClosed after drain, got %v", err)
    }
}

func TestSendOnClosedEndpoint(t *testing.T) {
    a, _ := Pair(codec.JSON())
    _ = a.Close()
    if err := a.Send(protocol.Close()); !errors.Is(err, ErrClosed) {
        t.Fatalf("want ErrClosed, got %v", err)
    }
}

func TestRecvContextCancel(t *testing.T) {
    _, b := Pair(codec.JSON())
    defer b.Close()
    ctx, cancel := context.WithCancel(context.Background())
    go func() {
        time.Sleep(10 * time.Millisecond)
        cancel()
    }()
    if _, err := b.Recv(ctx); !errors.Is(err, context.Canceled) {
        t.Fatalf("want context.Canceled, got %v", err)
    }
}

func TestSendRejectsInvalidMessage(t *testing.T) {
    a, _ := Pair(codec.JSON())
    defer a.Close()
    if err := a.Send(&protocol.Message{Kind: protocol.KindAck}); err == nil {
        t.Fatal("expected validation error")
    }
}
