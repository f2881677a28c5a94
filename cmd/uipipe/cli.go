package main

import "flag"

// Options holds CLI options for the demo.
type Options struct {
    ConfigPath string
    // Role selects which half to run: "pair" launches both, "ui" is used by
    // the launcher for the re-exec'd child.
    Role string
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
    fs := flag.NewFlagSet("uipipe", flag.ExitOnError)
    var opts Options
    fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
    fs.StringVar(&opts.Role, "role", "pair", "Process role: pair or ui (internal)")
    _ = fs.Parse(args)
    return opts
}
