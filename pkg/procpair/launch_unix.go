//go:build !windows

package procpair

import (
    "fmt"
    "os"
    "os/exec"

    "uipipe/pkg/channel"
    "uipipe/pkg/protocol/codec"
)

// Run builds the pipe pair, starts the current executable again with
// childArgs as the child half, and invokes parent with the parent-side
// endpoint. It returns once parent returns, without joining the child.
func Run(parent ParentRunner, childArgs []string, def codec.Codec) (*Cmd, error) {
    // parent writes -> child reads
    childR, parentW, err := os.Pipe()
    if err != nil {
        return nil, fmt.Errorf("pipe: %w", err)
    }
    // child writes -> parent reads
    parentR, childW, err := os.Pipe()
    if err != nil {
        return nil, fmt.Errorf("pipe: %w", err)
    }

    exe, err := os.Executable()
    if err != nil {
        return nil, fmt.Errorf("resolve executable: %w", err)
    }
    cmd := exec.Command(exe, childArgs...)
    cmd.Stdin = os.Stdin
    cmd.Stdout = os.Stdout
    cmd.Stderr = os.Stderr
    cmd.ExtraFiles = []*os.File{childR, childW} // fds 3, 4 in the child
    if err := cmd.Start(); err != nil {
        return nil, fmt.Errorf("start child: %w", err)
    }
    // The child owns its ends now; dropping ours lets EOF propagate when
    // either process exits.
    _ = childR.Close()
    _ = childW.Close()

    ep := channel.FromFiles(parentR, parentW, def)
    runErr := parent(ep)
    _ = ep.Close()
    return cmd, runErr
}

// ChildEndpoint reconstructs the child-side endpoint from the inherited
// descriptors. It must only be called inside a process started by Run.
func ChildEndpoint(def codec.Codec) (*channel.Endpoint, error) {
    r := os.NewFile(childFDRead, "procpair-read")
    w := os.NewFile(childFDWrite, "procpair-write")
    if r == nil || w == nil {
        return nil, fmt.Errorf("inherited pipe descriptors %d/%d missing", childFDRead, childFDWrite)
    }
    return channel.FromFiles(r, w, def), nil
}
