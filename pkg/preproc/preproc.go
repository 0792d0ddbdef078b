// Package preproc prepares raw C source for the parser.
//
// The parser proper consumes preprocessed text. This package offers two
// ways to get there: the builtin shim, which strips directives and
// substitutes small declaration stubs for the system headers a test
// program typically includes, and an external mode that shells out to a
// real preprocessor. The shim does no macro expansion; files that need it
// must use the external mode.
package preproc

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Options selects how source is preprocessed
type Options struct {
	// External runs the system preprocessor instead of the builtin shim.
	External bool
	// Command is the external preprocessor, "cc" when empty. It is invoked
	// as `<command> -E -P <file>`.
	Command string
}

// File preprocesses the file at path
func File(path string, opts Options) (string, error) {
	if opts.External {
		return external(path, opts)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Expand(string(src))
}

func external(path string, opts Options) (string, error) {
	cmd := opts.Command
	if cmd == "" {
		cmd = "cc"
	}
	out, err := exec.Command(cmd, "-E", "-P", path).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("preproc: %s -E failed: %s", cmd, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("preproc: running %s -E: %w", cmd, err)
	}
	return string(out), nil
}

// Expand runs the builtin shim over src. Include directives for known
// system headers pull in their declaration stubs, emitted once each at the
// top of the output; every other directive line is dropped. Conditional
// compilation cannot be dropped safely and is rejected.
func Expand(src string) (string, error) {
	var header, body strings.Builder
	emitted := map[string]bool{}

	for lineNo, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			body.WriteString(line)
			body.WriteByte('\n')
			continue
		}

		directive, rest := splitDirective(trimmed[1:])
		switch directive {
		case "include":
			name, ok := includeTarget(rest)
			if !ok {
				return "", fmt.Errorf("preproc: line %d: cannot resolve %s without the external preprocessor", lineNo+1, trimmed)
			}
			if emitted[name] {
				break
			}
			emitted[name] = true
			stub, known := headerStubs[name]
			if !known {
				// Unknown system headers are ignored; their names surface
				// later as implicit declarations if actually used.
				break
			}
			if !emitted[preludeKey] {
				emitted[preludeKey] = true
				header.WriteString(prelude)
			}
			header.WriteString(stub)
		case "define", "undef", "pragma", "":
			// Dropped without expansion.
		case "if", "ifdef", "ifndef", "elif", "else", "endif":
			return "", fmt.Errorf("preproc: line %d: conditional compilation requires the external preprocessor", lineNo+1)
		case "error":
			return "", fmt.Errorf("preproc: line %d: #error %s", lineNo+1, rest)
		default:
			return "", fmt.Errorf("preproc: line %d: unknown directive #%s", lineNo+1, directive)
		}
		// Keep a blank line where the directive was.
		body.WriteByte('\n')
	}

	return header.String() + body.String(), nil
}

func splitDirective(s string) (name, rest string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= 'a' && s[i] <= 'z' {
		i++
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// includeTarget extracts the header name from `<name>`. Quoted local
// includes are not resolvable by the shim.
func includeTarget(rest string) (string, bool) {
	if len(rest) >= 2 && rest[0] == '<' {
		if end := strings.IndexByte(rest, '>'); end > 0 {
			return rest[1:end], true
		}
	}
	return "", false
}
