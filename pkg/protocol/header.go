package protocol

import (
    "encoding/binary"
    "errors"
)

// Fixed header layout (16 bytes) for fast parsing over any channel.
// All integer fields are little-endian.
//
//  0  ..1   Magic   'U''P' (0x5550)
//  2        Version u8
//  3        Kind    u8
//  4        Content u8 (payload codec id)
//  5        Reserved u8
//  6  ..9   PayloadLen u32
//  10 ..15  Reserved2
const (
    headerSize = 16
    magicWord  = uint16(0x5550) // 'U''P'

    // Version of the wire layout.
    Version = 1
)

// maxPayload guards against absurd frame sizes; exchanged messages are tiny.
const maxPayload = 1 << 20

// Header describes metadata for a single frame.
type Header struct {
    Version    uint8
    Kind       Kind
    Content    uint8
    PayloadLen uint32
}

// MarshalBinary encodes the header to a 16-byte buffer.
func (h *Header) MarshalBinary() ([]byte, error) {
    buf := make([]byte, headerSize)
    binary.LittleEndian.PutUint16(buf[0:2], magicWord)
    buf[2] = h.Version
    buf[3] = uint8(h.Kind)
    buf[4] = h.Content
    // buf[5] reserved
    binary.LittleEndian.PutUint32(buf[6:10], h.PayloadLen)
    // 10..15 reserved2 stays zero
    return buf, nil
}

// UnmarshalBinary decodes the header from a 16-byte buffer.
func (h *Header) UnmarshalBinary(buf []byte) error {
    if len(buf) < headerSize {
        return errors.New("short header")
    }
    if binary.LittleEndian.Uint16(buf[0:2]) != magicWord {
        return errors.New("bad magic")
    }
    h.Version = buf[2]
    h.Kind = Kind(buf[3])
    h.Content = buf[4]
    h.PayloadLen = binary.LittleEndian.Uint32(buf[6:10])
    return nil
}
