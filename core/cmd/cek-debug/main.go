// Command cek-debug steps a program one machine transition at a time.
//
//	cek-debug FILE
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
)

const (
	prompt   = "cek> "
	helpText = `commands:
  s [n]  step n times (default 1)
  c      continue to the end
  p      print registers
  r      reset to the first step
  q      quit
`
)

// session owns one loaded program and the machine currently stepping it.
type session struct {
	doc  *cek.Element
	opts cek.Options
	m    *cek.Machine
	done bool
}

func newSession(doc *cek.Element, opts cek.Options) (*session, error) {
	s := &session{doc: doc, opts: opts}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) reset() error {
	m, res, err := cek.Load(s.doc, s.opts)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("program is %s, nothing to step: %s", res.Outcome, res.Output)
	}
	s.m = m
	s.done = false
	return nil
}

// exec runs one command line and writes what it produced to w. It returns
// false when the session should end.
func (s *session) exec(line string, w io.Writer) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "s", "step":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 {
				fmt.Fprintf(w, "bad step count %q\n", fields[1])
				return true
			}
			n = v
		}
		for i := 0; i < n && !s.m.Halted(); i++ {
			if err := s.m.Step(); err != nil {
				fmt.Fprintln(w, err)
				return true
			}
		}
		fmt.Fprint(w, s.m.Snapshot())
		s.finish(w)
	case "c", "continue":
		if err := s.m.Run(); err != nil {
			fmt.Fprintln(w, err)
			return true
		}
		fmt.Fprint(w, s.m.Snapshot())
		s.finish(w)
	case "p", "print":
		fmt.Fprint(w, s.m.Snapshot())
	case "r", "reset":
		if err := s.reset(); err != nil {
			fmt.Fprintln(w, err)
			return true
		}
		fmt.Fprint(w, s.m.Snapshot())
	case "q", "quit":
		return false
	case "h", "help", "?":
		fmt.Fprint(w, helpText)
	default:
		fmt.Fprintf(w, "unknown command %q, type h for help\n", fields[0])
	}
	return true
}

// finish prints the resolved declarations once, the first time the machine
// halts.
func (s *session) finish(w io.Writer) {
	if s.done || !s.m.Halted() {
		return
	}
	s.done = true
	out, err := s.m.Finalize()
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	doc, err := cek.DocumentString(out)
	if err != nil {
		fmt.Fprintln(w, err)
		return
	}
	fmt.Fprintln(w, doc)
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: cek-debug FILE")
		os.Exit(2)
	}
	os.Exit(run(os.Args[1]))
}

func run(path string) int {
	cfg, err := cek.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := cfg.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	doc, err := cek.LoadProgram(string(src))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	sess, err := newSession(doc, cek.Options{MaxSteps: cfg.MaxSteps, Log: log})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return repl(sess, cfg.History, log)
}

func repl(sess *session, histPath string, log zerolog.Logger) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				log.Warn().Err(err).Str("path", histPath).Msg("save history")
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	fmt.Print(helpText)
	fmt.Print(sess.m.Snapshot())
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Msg("read command")
			return 1
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if !sess.exec(line, os.Stdout) {
			return 0
		}
	}
}
