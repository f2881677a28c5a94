// Command uipipe demonstrates the two-process front-end/worker split: the
// worker loop runs in this (parent) process and the front end is re-exec'd
// as a child, with the two linked by a full-duplex message channel. Type a
// line to send an event; the worker acknowledges each one. Type the quit
// keyword (default "quit") or close input (ctrl-D) to shut both halves down.
package main

import (
    "bufio"
    "context"
    "fmt"
    "os"
    "os/signal"

    "go.uber.org/zap"

    "uipipe/pkg/channel"
    "uipipe/pkg/config"
    "uipipe/pkg/observability"
    "uipipe/pkg/procpair"
    "uipipe/pkg/protocol/codec"
    "uipipe/pkg/ui"
    "uipipe/pkg/worker"
)

func main() {
    os.Exit(run(ParseFlags(os.Args[1:])))
}

// run is the main entry point after CLI parsing.
func run(opts Options) int {
    cfg, err := config.Load(opts.ConfigPath)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
        return 1
    }

    logger, err := observability.SetupLogger(cfg.Log)
    if err != nil {
        _, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
        return 1
    }
    defer func() { _ = logger.Sync() }()

    c, err := codec.ForName(cfg.Channel.Codec)
    if err != nil {
        zap.L().Error("bad codec", zap.Error(err))
        return 1
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    defer stop()

    switch opts.Role {
    case "pair", "":
        return runPair(ctx, cfg, c, opts)
    case "ui":
        return runFrontEnd(ctx, cfg, c)
    default:
        zap.L().Error("unknown role", zap.String("role", opts.Role))
        return 2
    }
}

// runPair launches the front end as a child process and runs the worker loop
// here, mirroring the launcher contract: it returns when the parent half
// returns and does not join the child.
func runPair(ctx context.Context, cfg *config.Config, c codec.Codec, opts Options) int {
    zap.L().Info("launching front end child", zap.String("app", cfg.AppName))
    childArgs := []string{"-role", "ui"}
    if opts.ConfigPath != "" {
        childArgs = append(childArgs, "-config", opts.ConfigPath)
    }

    code := 0
    _, err := procpair.Run(func(ep *channel.Endpoint) error {
        // Any fault escaping the loop is caught here at the process
        // boundary, logged, and turned into a non-clean exit.
        defer func() {
            if r := recover(); r != nil {
                zap.L().Error("worker crashed", zap.Any("panic", r))
                code = 1
            }
        }()
        w := worker.New(ep, worker.Options{
            TickInterval: cfg.Worker.TickInterval(),
            QuitKeyword:  cfg.Worker.QuitKeyword,
            Logger:       zap.L(),
        })
        return w.Run(ctx)
    }, childArgs, c)
    if err != nil {
        zap.L().Error("worker terminated abnormally", zap.Error(err))
        return 1
    }
    zap.L().Info("worker terminated normally")
    return code
}

// runFrontEnd is the child half: user events come from stdin lines and
// worker replies render to stdout.
func runFrontEnd(ctx context.Context, cfg *config.Config, c codec.Codec) int {
    ep, err := procpair.ChildEndpoint(c)
    if err != nil {
        zap.L().Error("child endpoint", zap.Error(err))
        return 1
    }
    defer func() { _ = ep.Close() }()

    fmt.Println("type a line and press enter; ctrl-D or the quit keyword ends the session")
    events := make(chan string)
    go readLines(os.Stdin, events)

    u := ui.New(ep, events, ui.NewWriterRenderer(os.Stdout), ui.Options{
        PollInterval: cfg.UI.PollInterval(),
        Logger:       zap.L(),
    })
    if err := u.Run(ctx); err != nil {
        zap.L().Error("front end terminated abnormally", zap.Error(err))
        return 1
    }
    zap.L().Info("front end terminated normally")
    return 0
}

// readLines feeds stdin lines into events and closes it on EOF, which the
// front end treats like the user closing the window.
func readLines(f *os.File, events chan<- string) {
    sc := bufio.NewScanner(f)
    for sc.Scan() {
        events <- sc.Text()
    }
    close(events)
}
