package protocol

import (
    "fmt"
    "io"
)

// Frame is a header + payload wrapper for a single channel transfer.
type Frame struct {
    Header  Header
    Payload []byte
}

// WriteTo writes header + payload to w.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
    f.Header.PayloadLen = uint32(len(f.Payload))
    hb, err := f.Header.MarshalBinary()
    if err != nil {
        return 0, err
    }
    n1, err := w.Write(hb)
    if err != nil {
        return int64(n1), err
    }
    n2, err := w.Write(f.Payload)
    return int64(n1 + n2), err
}

// ReadFrom reads header + payload from r.
func (f *Frame) ReadFrom(r io.Reader) (int64, error) {
    hb := make([]byte, headerSize)
    if _, err := io.ReadFull(r, hb); err != nil {
        return 0, err
    }
    if err := f.Header.UnmarshalBinary(hb); err != nil {
        return 0, err
    }
    if f.Header.PayloadLen > maxPayload {
        return 0, fmt.Errorf("payload too large: %d", f.Header.PayloadLen)
    }
    if f.Header.PayloadLen > 0 {
        f.Payload = make([]byte, int(f.Header.PayloadLen))
        if _, err := io.ReadFull(r, f.Payload); err != nil {
            return 0, err
        }
    } else {
        f.Payload = nil
    }
    return int64(headerSize + int(f.Header.PayloadLen)), nil
}
