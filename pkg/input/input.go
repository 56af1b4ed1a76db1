package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// StdinPath is the filename that refers to standard input.
const StdinPath = "-"

var (
	ErrNoInputProvided = errors.New("no input provided")
	ErrReadInput       = errors.New("read input")
)

// Input holds every candidate document found for an invocation.
type Input struct {
	// Files holds the contents of each readable `-f` argument, in order.
	Files [][]byte
	// Stdin holds the bytes consumed from standard input, if any.
	Stdin []byte
	// Opaque lists sources that only kubectl can expand: directories,
	// URLs, kustomizations and recursive walks.
	Opaque []string
}

// Single returns the only candidate document. It reports false when there
// are zero or several candidates, or when any source is opaque.
func (in *Input) Single() ([]byte, bool) {
	if len(in.Opaque) > 0 {
		return nil, false
	}

	docs := in.Documents()
	if len(docs) != 1 {
		return nil, false
	}

	return docs[0], true
}

// Documents returns every candidate document.
func (in *Input) Documents() [][]byte {
	if len(in.Files) > 0 {
		return in.Files
	}

	if len(in.Stdin) > 0 {
		return [][]byte{in.Stdin}
	}

	return nil
}

// Filenames returns the values of every `-f`/`--filename` flag in args.
// A flag without a following value is ignored.
func Filenames(args []string) []string {
	var paths []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return paths
		case arg == "-f", arg == "--filename":
			if i+1 < len(args) {
				paths = append(paths, args[i+1])
				i++
			}
		case strings.HasPrefix(arg, "--filename="):
			paths = append(paths, strings.TrimPrefix(arg, "--filename="))
		case strings.HasPrefix(arg, "-f="):
			paths = append(paths, strings.TrimPrefix(arg, "-f="))
		}
	}

	return paths
}

// Kustomizations returns the values of every `-k`/`--kustomize` flag in args.
func Kustomizations(args []string) []string {
	var dirs []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return dirs
		case arg == "-k", arg == "--kustomize":
			if i+1 < len(args) {
				dirs = append(dirs, args[i+1])
				i++
			}
		case strings.HasPrefix(arg, "--kustomize="):
			dirs = append(dirs, strings.TrimPrefix(arg, "--kustomize="))
		case strings.HasPrefix(arg, "-k="):
			dirs = append(dirs, strings.TrimPrefix(arg, "-k="))
		}
	}

	return dirs
}

// Recursive reports whether args ask kubectl to walk directories.
func Recursive(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-R", "--recursive", "--recursive=true", "-R=true":
			return true
		}
	}

	return false
}

// IsURL reports whether path is a remote manifest kubectl downloads itself.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Resolve reads the candidate documents named by args. When args name no
// file, stdin is read instead, unless it is an interactive terminal.
//
// Directories, URLs and kustomizations are recorded in [Input.Opaque]
// without being read.
//
// It returns [ErrNoInputProvided] when nothing was found and
// [ErrReadInput] when a file could not be read.
func Resolve(args []string, stdin io.Reader) (*Input, error) {
	in := &Input{
		Opaque: Kustomizations(args),
	}

	paths := Filenames(args)
	stdinRead := false

	if Recursive(args) {
		in.Opaque = append(in.Opaque, paths...)
	}

	for _, path := range paths {
		if path == StdinPath {
			if stdinRead {
				continue
			}

			data, err := readStdin(stdin)
			if err != nil {
				return nil, err
			}

			stdinRead = true
			in.Stdin = data
			in.Files = append(in.Files, data)

			continue
		}

		if IsURL(path) {
			in.Opaque = append(in.Opaque, path)
			continue
		}

		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			in.Opaque = append(in.Opaque, path)
			continue
		}

		data, err := os.ReadFile(path) //nolint:gosec // G304: Paths are user-provided by design.
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}

		in.Files = append(in.Files, data)
	}

	if len(paths) > 0 || len(in.Opaque) > 0 {
		return in, nil
	}

	if !IsTerminal(stdin) {
		data, err := readStdin(stdin)
		if err != nil {
			return nil, err
		}

		in.Stdin = data
	}

	if len(in.Stdin) == 0 {
		return nil, ErrNoInputProvided
	}

	return in, nil
}

// IsTerminal reports whether r is an interactive terminal. Readers
// exposing neither an IsTerminal method nor a file descriptor are assumed
// not to be terminals.
func IsTerminal(r io.Reader) bool {
	switch v := r.(type) {
	case nil:
		return true
	case interface{ IsTerminal() bool }:
		return v.IsTerminal()
	case interface{ Fd() uintptr }:
		return term.IsTerminal(int(v.Fd())) //nolint:gosec // G115: File descriptors fit in an int.
	}

	return false
}

func readStdin(stdin io.Reader) ([]byte, error) {
	if stdin == nil {
		return nil, nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
	}

	return data, nil
}
