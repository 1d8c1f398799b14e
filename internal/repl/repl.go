package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"gecko/internal/ast"
	"gecko/internal/evaluator"
	"gecko/internal/lexer"
	"gecko/internal/object"
	"gecko/internal/parser"
	"gecko/internal/util"
)

const PROMPT = ">> "

// Start runs the interactive loop. One evaluator, and therefore one root
// environment, persists across lines: definitions from earlier lines stay
// visible, and a line that fails to scan, parse or run never kills the
// session.
func Start(out io.Writer, cfg util.Configuration) {
	e := evaluator.New(out)
	if isInteractive() {
		startInteractive(e, out, cfg.HistoryFile)
		return
	}
	startBuffered(e, out, os.Stdin)
}

func startInteractive(e *evaluator.Evaluator, out io.Writer, historyFile string) {
	state := liner.NewLiner()
	defer state.Close()
	state.SetCtrlCAborts(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyFile); err == nil {
				state.WriteHistory(f)
				f.Close()
			}
		}()
	}

	for {
		line, err := state.Prompt(PROMPT)
		if err != nil {
			switch {
			case errors.Is(err, liner.ErrPromptAborted):
				fmt.Fprintln(out)
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(out)
				return
			default:
				fmt.Fprintf(os.Stderr, "read error: %v\n", err)
				return
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		state.AppendHistory(line)
		runLine(e, out, line)
	}
}

func startBuffered(e *evaluator.Evaluator, out io.Writer, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			runLine(e, out, line)
		}
	}
}

// runLine scans, parses and evaluates one input line. A bare expression with
// no trailing ';' is accepted as well, and the value of a trailing
// expression statement is echoed.
func runLine(e *evaluator.Evaluator, out io.Writer, line string) {
	program, ok := parseLine(out, line)
	if !ok {
		return
	}

	result := e.Interpret(program)
	if result == nil {
		return
	}
	if result.Type() == object.ERROR_OBJ {
		fmt.Fprintln(out, result.Inspect())
		return
	}
	fmt.Fprintln(out, result.Inspect())
}

func parseLine(out io.Writer, line string) (*ast.Program, bool) {
	src := line
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, ";") && !strings.HasSuffix(trimmed, "}") {
		src = line + ";"
	}

	l := lexer.New(src)
	tokens := l.ScanTokens()
	if errs := l.Errors(); len(errs) != 0 {
		printErrors(out, errs)
		return nil, false
	}

	p := parser.New(tokens)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		printErrors(out, errs)
		return nil, false
	}
	return prog, true
}

func printErrors(out io.Writer, errs []string) {
	for _, msg := range errs {
		io.WriteString(out, msg+"\n")
	}
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
