package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/silhavyj/FAT32/volume"
)

// Shell is the REPL loop over a mounted Volume, styled after the
// original_source/src/main.cpp command dispatch: read a line, split on
// whitespace, dispatch on the first token, print "invalid command" for
// anything unrecognized.
type Shell struct {
	vol *volume.Volume
	in  *bufio.Scanner
	out io.Writer
}

func NewShell(vol *volume.Volume, in io.Reader, out io.Writer) *Shell {
	return &Shell{vol: vol, in: bufio.NewScanner(in), out: out}
}

func (s *Shell) RunInteractive() error {
	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		line := s.in.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if s.dispatch(line) == errExit {
			return nil
		}
	}
}

func (s *Shell) RunScript(path string) error {
	_, err := s.runFile(path)
	return err
}

// runFile drives a host script file through dispatch, the way RunScript
// does, but also reports whether the script itself hit exit/quit — used
// by the "load" command so an exit inside a loaded script ends the
// whole session instead of only the nested read loop.
func (s *Shell) runFile(path string) (dispatchResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return errContinue, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		fmt.Fprintf(s.out, "> %s\n", line)
		if s.dispatch(line) == errExit {
			return errExit, nil
		}
	}
	return errContinue, scanner.Err()
}

type dispatchResult int

const (
	errContinue dispatchResult = iota
	errExit
)

func (s *Shell) dispatch(line string) dispatchResult {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "exit", "quit":
		return errExit
	case "mkdir":
		err = s.requireArgs(args, 1, func() error { return s.vol.Mkdir(args[0]) })
	case "rmdir":
		err = s.requireArgs(args, 1, func() error { return s.vol.Rmdir(args[0]) })
	case "ls":
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		var report string
		report, err = s.vol.Ls(path)
		if err == nil {
			fmt.Fprint(s.out, report)
		}
	case "cd":
		err = s.requireArgs(args, 1, func() error { return s.vol.Cd(args[0]) })
	case "pwd":
		var p string
		p, err = s.vol.Pwd()
		if err == nil {
			fmt.Fprintln(s.out, p)
		}
	case "in":
		err = s.requireArgs(args, 1, func() error { return s.vol.In(args[0]) })
	case "out":
		err = s.requireArgs(args, 1, func() error { return s.vol.Out(args[0]) })
	case "cat":
		err = s.requireArgs(args, 1, func() error { return s.vol.Cat(args[0], s.out) })
	case "rm":
		err = s.requireArgs(args, 1, func() error { return s.vol.Rm(args[0]) })
	case "mv":
		err = s.requireArgs(args, 2, func() error { return s.vol.Mv(args[1], args[0]) })
	case "cp":
		err = s.requireArgs(args, 2, func() error { return s.vol.Cp(args[1], args[0]) })
	case "load":
		if len(args) < 1 {
			err = fmt.Errorf("expected at least 1 argument(s)")
			break
		}
		result, loadErr := s.runFile(args[0])
		if loadErr != nil {
			fmt.Fprintf(s.out, "error: %v\n", loadErr)
		}
		return result
	case "tree":
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		var report string
		report, err = s.vol.Tree(path)
		if err == nil {
			fmt.Fprint(s.out, report)
		}
	case "info":
		st, infoErr := s.vol.Info()
		err = infoErr
		if err == nil {
			fmt.Fprintf(s.out, "clusters: %d total, %d free (%.1f%% free), cluster size: %d bytes, space: %d total, %d free\n",
				st.TotalClusters, st.FreeClusters, st.FreePercent(), st.ClusterSize, st.TotalBytes, st.FreeBytes)
		}
	case "fsck":
		report, fsckErr := s.vol.Fsck()
		err = fsckErr
		if err == nil {
			if report.Clean() {
				fmt.Fprintf(s.out, "fsck %s: clean\n", report.RunID)
			} else {
				fmt.Fprintf(s.out, "fsck %s: %d violation(s)\n", report.RunID, len(report.Violations))
				for _, v := range report.Violations {
					fmt.Fprintf(s.out, "  - %s\n", v)
				}
			}
		}
	default:
		fmt.Fprintln(s.out, "invalid command")
		return errContinue
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return errContinue
}

func (s *Shell) requireArgs(args []string, n int, fn func() error) error {
	if len(args) < n {
		return fmt.Errorf("expected at least %d argument(s)", n)
	}
	return fn()
}
