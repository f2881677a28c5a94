package channel

import (
    "net"
    "os"

    "uipipe/pkg/protocol/codec"
)

// Pair returns two linked in-process endpoints. Useful for tests and for
// wiring both loops inside a single process.
func Pair(def codec.Codec) (*Endpoint, *Endpoint) {
    c1, c2 := net.Pipe()
    return New(c1, c1, def, c1), New(c2, c2, def, c2)
}

// FromFiles builds an endpoint over a pair of open pipe files, typically the
// descriptors inherited from the launcher.
func FromFiles(r, w *os.File, def codec.Codec) *Endpoint {
    return New(r, w, def, r, w)
}
