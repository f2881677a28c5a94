package codec

import "fmt"

// Codec defines a simple interface for marshaling typed messages.
// Implementations should be deterministic so both processes agree on bytes.
type Codec interface {
    ContentType() string
    Marshal(v any) ([]byte, error)
    Unmarshal(data []byte, v any) error
}

// Registry maps content types to codecs.
type Registry struct{ byType map[string]Codec }

// NewRegistry constructs a registry preloaded with the JSON codec, which
// requires no initialization. CBOR can be added explicitly via Register.
func NewRegistry() *Registry {
    r := &Registry{byType: make(map[string]Codec)}
    r.Register(JSON())
    return r
}

// Register adds a codec.
func (r *Registry) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns a codec by content type, or nil.
func (r *Registry) Get(contentType string) Codec { return r.byType[contentType] }

// ForName resolves a codec by short configuration name ("json" or "cbor").
func ForName(name string) (Codec, error) {
    switch name {
    case "", "json":
        return JSON(), nil
    case "cbor":
        return CBOR()
    default:
        return nil, fmt.Errorf("unknown codec %q", name)
    }
}
