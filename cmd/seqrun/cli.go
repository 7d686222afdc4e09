package main

import "flag"

// Options holds CLI options for seqrun.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("seqrun", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Log at debug level")
	_ = fs.Parse(args)
	return opts
}
