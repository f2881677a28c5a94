// Package procpair launches the two halves of the split: it constructs a
// linked channel pair, starts the child half in a new process, and runs the
// parent half in the current process.
//
// On unix the channel is a pair of anonymous pipes inherited by the child as
// descriptors 3 and 4. On Windows it is a named pipe whose name reaches the
// child through the environment.
package procpair

import (
    "os/exec"

    "uipipe/pkg/channel"
)

// ParentRunner is the parent-side half, invoked synchronously with its
// endpoint. Run returns when it returns.
type ParentRunner func(ep *channel.Endpoint) error

// childFDRead/childFDWrite are the descriptor slots the child inherits on
// unix: ExtraFiles begin at fd 3.
const (
    childFDRead  = 3
    childFDWrite = 4
)

// pipeNameEnv carries the named pipe path to the child on Windows.
const pipeNameEnv = "UIPIPE_PIPE"

// Cmd aliases the started child process handle. Run does not wait on it or
// terminate it; callers that care about the child's exit should Wait
// themselves.
type Cmd = exec.Cmd
