//go:build windows

package procpair

import (
    "context"
    "fmt"
    "os"
    "os/exec"
    "time"

    "github.com/Microsoft/go-winio"

    "uipipe/pkg/channel"
    "uipipe/pkg/protocol/codec"
)

// Run builds a named pipe, starts the current executable again with
// childArgs as the child half, and invokes parent with the parent-side
// endpoint once the child connects. It returns when parent returns, without
// joining the child.
func Run(parent ParentRunner, childArgs []string, def codec.Codec) (*Cmd, error) {
    name := fmt.Sprintf(`\\.\pipe\uipipe-%d-%d`, os.Getpid(), time.Now().UnixNano())
    l, err := winio.ListenPipe(name, nil)
    if err != nil {
        return nil, fmt.Errorf("listen pipe: %w", err)
    }
    defer l.Close()

    exe, err := os.Executable()
    if err != nil {
        return nil, fmt.Errorf("resolve executable: %w", err)
    }
    cmd := exec.Command(exe, childArgs...)
    cmd.Stdin = os.Stdin
    cmd.Stdout = os.Stdout
    cmd.Stderr = os.Stderr
    cmd.Env = append(os.Environ(), pipeNameEnv+"="+name)
    if err := cmd.Start(); err != nil {
        return nil, fmt.Errorf("start child: %w", err)
    }

    conn, err := l.Accept()
    if err != nil {
        return cmd, fmt.Errorf("accept child: %w", err)
    }
    ep := channel.New(conn, conn, def, conn)
    runErr := parent(ep)
    _ = ep.Close()
    return cmd, runErr
}

// ChildEndpoint dials the named pipe advertised by the launcher. It must
// only be called inside a process started by Run.
func ChildEndpoint(def codec.Codec) (*channel.Endpoint, error) {
    name := os.Getenv(pipeNameEnv)
    if name == "" {
        return nil, fmt.Errorf("%s not set; not started by the launcher", pipeNameEnv)
    }
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    conn, err := winio.DialPipeContext(ctx, name)
    if err != nil {
        return nil, fmt.Errorf("dial pipe: %w", err)
    }
    return channel.New(conn, conn, def, conn), nil
}
