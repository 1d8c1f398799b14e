package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gecko/internal/evaluator"
	"gecko/internal/lexer"
	"gecko/internal/object"
	"gecko/internal/parser"
	"gecko/internal/repl"
	"gecko/internal/util"
)

// process exit statuses: usage errors, lexical/syntax errors, and runtime
// failures are distinguishable to callers
const (
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
)

var (
	// Version is the current version of the gecko binary.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath string
	debugAST   bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Render the AST as a JSON file")
	// config file
	flag.StringVar(&configPath, "config", "", "Config file path (default $GECKO_HOME/gecko.toml or ~/.gecko.toml)")
	// log config
	flag.StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	config, err := util.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gecko: bad config file: %v\n", err)
		os.Exit(exitUsage)
	}
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	// flags set on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		case "debug-ast":
			config.DebugAST = debugAST
		}
	})

	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	if version {
		printVersion()
		return
	}
	if help {
		printHelp()
		return
	}

	switch flag.NArg() {
	case 0:
		repl.Start(os.Stdout, config)
	case 1:
		os.Exit(runFile(flag.Arg(0), config))
	default:
		fmt.Fprintln(os.Stderr, "Usage: gecko [options] [script]")
		os.Exit(exitUsage)
	}
}

// runFile executes the script at path and maps its outcome to an exit
// status. Evaluation never starts when the scan or parse pass recorded any
// error.
func runFile(path string, config util.Configuration) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gecko: %v\n", err)
		return exitUsage
	}

	l := lexer.New(string(src))
	tokens := l.ScanTokens()

	p := parser.New(tokens)
	program := p.ParseProgram()

	if reportErrors(l.Errors()) || reportErrors(p.Errors()) {
		return exitDataErr
	}

	if config.DebugAST {
		if data, err := parser.DumpJSON(program); err == nil {
			out := path + ".ast.json"
			if werr := os.WriteFile(out, data, 0o644); werr != nil {
				fmt.Fprintf(os.Stderr, "gecko: failed to write %s: %v\n", out, werr)
			}
		}
	}

	e := evaluator.New(os.Stdout)
	result := e.Interpret(program)
	if rtErr, ok := result.(*object.Error); ok {
		fmt.Fprintln(os.Stderr, rtErr.Inspect())
		return exitSoftware
	}
	return 0
}

func reportErrors(errs []string) bool {
	for _, msg := range errs {
		fmt.Fprintln(os.Stderr, msg)
	}
	return len(errs) > 0
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("gecko version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: gecko [options] [script]

Options:
  -config <path>     Config file path. Default is $GECKO_HOME/gecko.toml, then ~/.gecko.toml.
  -debug-ast         Render the AST as a JSON file next to the script.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
This is the gecko programming language.

Examples:
  gecko                         Start the interactive prompt
  gecko myfile.gk               Execute the provided gecko file
  gecko -debug-ast myfile.gk    Execute the file and dump its syntax tree

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
