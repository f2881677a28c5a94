// Package protocol defines the tagged message variants exchanged between the
// front-end and worker processes, and the fixed frame header used to carry
// them over a byte stream.
package protocol

// Kind discriminates message variants (fits in uint8, mirrored in the frame
// header type field).
type Kind uint8

const (
    KindUnknown Kind = iota
    KindClose        // terminal sentinel: sender is shutting down / requests shutdown
    KindInput        // user input event from the front end
    KindAck          // worker acknowledgement wrapping the original event
)

func (k Kind) String() string {
    switch k {
    case KindClose:
        return "close"
    case KindInput:
        return "input-event"
    case KindAck:
        return "ack-reply"
    default:
        return "unknown"
    }
}

// Content identifiers for the header content field. Selects the payload codec.
const (
    ContentRaw  uint8 = iota // opaque bytes, no codec
    ContentJSON
    ContentCBOR
)

// Content type strings matching pkg/protocol/codec implementations.
const (
    ContentTypeRaw  = "application/octet-stream"
    ContentTypeJSON = "application/json"
    ContentTypeCBOR = "application/cbor"
)

// ContentID maps a content type string to its header content id.
func ContentID(contentType string) uint8 {
    switch contentType {
    case ContentTypeJSON:
        return ContentJSON
    case ContentTypeCBOR:
        return ContentCBOR
    default:
        return ContentRaw
    }
}

// ContentTypeOf is the inverse of ContentID.
func ContentTypeOf(id uint8) string {
    switch id {
    case ContentJSON:
        return ContentTypeJSON
    case ContentCBOR:
        return ContentTypeCBOR
    default:
        return ContentTypeRaw
    }
}
