// Command cek evaluates one program read from stdin and prints the final
// declarations to stdout.
//
//	cek < program.xml > result.xml
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
	"github.com/hypersimple/Toy-Language-Interpreter/store"
)

const usage = `USAGE: "$ cek < in > out"`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	cfg, err := cek.LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log, err := cfg.Logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(args) > 0 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	if term.IsTerminal(int(stdin.Fd())) {
		log.Error().Err(&cek.Error{Kind: cek.InputUnavailableError, Msg: "no input on stdin"}).Msg(usage)
		return 1
	}

	src, err := io.ReadAll(stdin)
	if err != nil {
		log.Error().Err(&cek.Error{Kind: cek.InputUnavailableError, Msg: "read stdin", Err: err}).Msg("cannot read program")
		return 1
	}

	res, err := evaluate(string(src), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("evaluation failed")
		return 1
	}

	w := bufio.NewWriter(stdout)
	if err := cek.WriteDocument(w, res.Output); err != nil {
		log.Error().Err(err).Msg("output error")
		return 1
	}
	if err := w.Flush(); err != nil {
		log.Error().Err(err).Msg("output error")
		return 1
	}
	if !res.OK() {
		log.Error().Str("outcome", res.Outcome.String()).Msg("program has declarations only")
		return 1
	}
	return 0
}

// evaluate runs the program and, when a trace database is configured,
// records the run there.
func evaluate(src string, cfg cek.Config, log zerolog.Logger) (*cek.Result, error) {
	var res *cek.Result
	doc, err := cek.ReadDocument(strings.NewReader(src))
	if err == nil {
		res, err = cek.Evaluate(doc, cek.Options{MaxSteps: cfg.MaxSteps, Log: log})
	}
	if cfg.TraceDB != "" {
		recordTrace(cfg.TraceDB, cek.NewTrace(src, res, err), log)
	}
	return res, err
}

func recordTrace(path string, tr cek.Trace, log zerolog.Logger) {
	st, err := store.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("trace store unavailable")
		return
	}
	defer st.Close()
	id, err := st.Record(tr)
	if err != nil {
		log.Warn().Err(err).Msg("record trace")
		return
	}
	log.Debug().Int64("trace", id).Str("db", path).Msg("trace recorded")
}
