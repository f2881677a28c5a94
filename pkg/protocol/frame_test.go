package protocol

import (
    "bytes"
    "testing"
)

func TestFrameRoundtrip(t *testing.T) {
    in := Frame{
        Header:  Header{Version: Version, Kind: KindInput, Content: ContentJSON},
        Payload: []byte(`{"kind":2,"time":"10:00:00","input":"hello"}`),
    }
    var buf bytes.Buffer
    if _, err := in.WriteTo(&buf); err != nil { t.Fatalf("write: %v", err) }

    var out Frame
    if _, err := out.ReadFrom(&buf); err != nil { t.Fatalf("read: %v", err) }
    if out.Header.Kind != KindInput || out.Header.Content != ContentJSON {
        t.Fatalf("header mismatch: %#v", out.Header)
    }
    if !bytes.Equal(out.Payload, in.Payload) {
        t.Fatalf("payload mismatch: %q", out.Payload)
    }
}

func TestFrameEmptyPayload(t *testing.T) {
    in := Frame{Header: Header{Version: Version, Kind: KindClose}}
    var buf bytes.Buffer
    if _, err := in.WriteTo(&buf); err != nil { t.Fatalf("write: %v", err) }
    if buf.Len() != headerSize {
        t.Fatalf("close frame should be header only, got %d bytes", buf.Len())
    }
    var out Frame
    if _, err := out.ReadFrom(&buf); err != nil { t.Fatalf("read: %v", err) }
    if out.Header.Kind != KindClose || out.Payload != nil {
        t.Fatalf("unexpected frame: %#v", out)
    }
}

func TestFrameRejectsOversizedPayload(t *testing.T) {
    h := Header{Version: Version, Kind: KindInput, PayloadLen: maxPayload + 1}
    hb, err := h.MarshalBinary()
    if err != nil { t.Fatalf("marshal: %v", err) }
    var out Frame
    if _, err := out.ReadFrom(bytes.NewReader(hb)); err == nil {
        t.Fatal("expected payload size error")
    }
}
