package protocol

import (
    "fmt"
    "time"
)

// Message is one unit exchanged between the front end and the worker.
// The Kind discriminant selects which fields are meaningful:
//
//   KindClose  - no payload fields; the reserved terminal sentinel
//   KindInput  - Time and Input carry a user event
//   KindAck    - Data wraps the input event being acknowledged
//
// Field tags serve both the JSON and CBOR codecs.
type Message struct {
    Kind  Kind     `json:"kind"`
    Time  string   `json:"time,omitempty"`
    Input string   `json:"input,omitempty"`
    Data  *Message `json:"data,omitempty"`
}

// Close returns the terminal sentinel. It carries no payload, so it can never
// collide with an application message.
func Close() *Message { return &Message{Kind: KindClose} }

// Input builds a user input event stamped with wall-clock time.
func Input(at time.Time, text string) *Message {
    return &Message{Kind: KindInput, Time: at.Format("15:04:05"), Input: text}
}

// Ack builds the worker reply wrapping the original event.
func Ack(m *Message) *Message { return &Message{Kind: KindAck, Data: m} }

// Validate checks structural rules per variant.
func (m *Message) Validate() error {
    switch m.Kind {
    case KindClose:
        if m.Time != "" || m.Input != "" || m.Data != nil {
            return fmt.Errorf("close sentinel must carry no payload")
        }
    case KindInput:
        if m.Data != nil {
            return fmt.Errorf("input event must not nest a message")
        }
    case KindAck:
        if m.Data == nil {
            return fmt.Errorf("ack must wrap the acknowledged event")
        }
    default:
        return fmt.Errorf("unknown message kind %d", uint8(m.Kind))
    }
    return nil
}

func (m *Message) String() string {
    switch m.Kind {
    case KindInput:
        return fmt.Sprintf("%s{time=%s input=%q}", m.Kind, m.Time, m.Input)
    case KindAck:
        return fmt.Sprintf("%s{data=%s}", m.Kind, m.Data)
    default:
        return m.Kind.String()
    }
}
