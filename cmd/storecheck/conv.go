package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"github.com/storecheck/storecheck/internal/logconv"
	"github.com/storecheck/storecheck/internal/store"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

type ConvCommand struct {
	InStream  io.Reader
	OutStream io.Writer
	ErrStream io.Writer

	// IsTerminal reports whether the output is a terminal. It checks os.Stdout if nil.
	IsTerminal func() bool
}

var defaultConvCommand = &ConvCommand{
	InStream:  os.Stdin,
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

const ConvHelp = `storecheck conv -- Convert history file to other format

Usage: storecheck conv [OPTIONS...] [HISTORY...]

HISTORY is data/health_history.json if omitted. Use "-" to read stdin.

Options:
  -o, --output  Output file. (default stdout)

  -c, --csv     Convert to CSV. (default format)
  -j, --json    Convert to JSON.
  -l, --ltsv    Convert to LTSV.
  -x, --xlsx    Convert to XLSX.

  -h, --help    Show this help message and exit.
`

const defaultHistoryPath = "data/health_history.json"

func (c ConvCommand) isTerminal() bool {
	if c.IsTerminal != nil {
		return c.IsTerminal()
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c ConvCommand) Run(args []string) int {
	flags := pflag.NewFlagSet("storecheck conv", pflag.ContinueOnError)
	flags.Usage = func() {}

	outputPath := flags.StringP("output", "o", "", "Output file")

	toCsv := flags.BoolP("csv", "c", false, "Convert to CSV")
	toJson := flags.BoolP("json", "j", false, "Convert to JSON")
	toLtsv := flags.BoolP("ltsv", "l", false, "Convert to LTSV")
	toXlsx := flags.BoolP("xlsx", "x", false, "Convert to XLSX")

	help := flags.BoolP("help", "h", false, "Show this message and exit")

	if err := flags.Parse(args[2:]); err != nil {
		fmt.Fprintln(c.ErrStream, err)
		fmt.Fprintf(c.ErrStream, "\nPlease see `%s %s -h` for more information.\n", args[0], args[1])
		return 2
	}

	if *help {
		fmt.Fprint(c.OutStream, ConvHelp)
		return 0
	}

	count := 0
	for _, b := range []bool{*toCsv, *toJson, *toLtsv, *toXlsx} {
		if b {
			count++
		}
	}
	if count > 1 {
		fmt.Fprintln(c.ErrStream, "error: flags for output format can not use multiple in the same time.")
		return 2
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		inputs = []string{defaultHistoryPath}
	}

	var rs []api.Record
	for _, path := range inputs {
		xs, err := c.read(path)
		if err != nil {
			fmt.Fprintf(c.ErrStream, "error: failed to read history: %s\n", err)
			return 1
		}
		rs = append(rs, xs...)
	}
	if len(inputs) > 1 {
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].Timestamp.Before(rs[j].Timestamp)
		})
	}

	output := c.OutStream
	if *outputPath != "" && *outputPath != "-" {
		f, err := os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(c.ErrStream, "error: failed to open output file: %s\n", err)
			return 1
		}
		defer f.Close()
		output = f
	} else if *toXlsx && c.isTerminal() {
		fmt.Fprintln(c.ErrStream, "error: can not write xlsx format to stdout. please redirect or use -o option.")
		return 2
	}

	var err error
	switch {
	case *toJson:
		err = toJSON(output, rs)
	case *toLtsv:
		err = logconv.ToLTSV(output, rs)
	case *toXlsx:
		err = logconv.ToXlsx(output, rs, time.Now())
	default:
		err = logconv.ToCSV(output, rs)
	}
	if err != nil {
		fmt.Fprintf(c.ErrStream, "error: %s\n", err)
		return 1
	}
	return 0
}

func (c ConvCommand) read(path string) ([]api.Record, error) {
	if path == "-" {
		return store.DecodeHistory(c.InStream, "stdin")
	}
	return store.ReadHistory(path)
}

func toJSON(w io.Writer, rs []api.Record) error {
	if rs == nil {
		rs = []api.Record{}
	}

	b, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
