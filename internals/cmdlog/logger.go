// Package cmdlog prints CLI output and configures the engine logger
package cmdlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/sirupsen/logrus"
)

// Logger loggs pretty stuff to the console
type Logger struct {
	out       io.Writer
	emojis    bool
	indention int
}

// helper for indention
func (l *Logger) println(a string) {
	fmt.Fprintln(l.out, strings.Repeat(" ", l.indention)+a)
}

func (l *Logger) sprintEmoji(e string) string {
	if l.emojis {
		return e + " "
	}
	return ""
}

// Headline prints a cyan line
func (l *Logger) Headline(s string) {
	fmt.Fprintln(l.out, gchalk.WithCyan().Bold(s))
}

// Info prints a "normal" line
func (l *Logger) Info(s string) {
	l.println(s)
}

// Log prints a gray line
func (l *Logger) Log(s string) {
	l.println(gchalk.Gray(s))
}

// Warn will print a warning
func (l *Logger) Warn(s string) {
	fmt.Fprintln(l.out, l.sprintEmoji("⚠️ ")+gchalk.WithYellow().Bold(s))
}

// Indent returns a logger that indents every line by n more spaces
func (l *Logger) Indent(n int) *Logger {
	logger := *l
	logger.indention += n
	return &logger
}

// NewTask returns a new Task logger
func (l *Logger) NewTask(end int) *Task {
	logger := *l
	return &Task{&logger, 0, end}
}

// New returns a new Logger writing to stdout
func New() *Logger {
	return NewWriter(os.Stdout)
}

// NewWriter returns a new Logger writing to out
func NewWriter(out io.Writer) *Logger {
	emojis := runtime.GOOS != "windows"

	// disable color for CI
	if os.Getenv("CI") != "" {
		emojis = false
		gchalk.SetLevel(gchalk.LevelNone)
	}
	return &Logger{out: out, emojis: emojis}
}

// DisableColors turns off colored output
func DisableColors() {
	gchalk.SetLevel(gchalk.LevelNone)
}

// Task logs but with progress
type Task struct {
	*Logger
	current int
	end     int
}

// Step prints progress
func (l *Task) Step(e string, s string) {
	l.current++
	text := gchalk.Cyan(fmt.Sprintf(
		"[%d / %d] %s%s",
		l.current,
		l.end,
		l.sprintEmoji(e),
		s,
	))

	// step headlines have no indentation
	fmt.Fprintln(l.out, text)
}

// NewLogrus returns the logger handed to engine packages. It writes to stderr
// at warn level, or debug level when verbose is set
func NewLogrus(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !verbose,
		FullTimestamp:    verbose,
	})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}
