// Package logparser reads minecraft log output
package logparser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"time"
)

const timeFormat = "15:04:05"

var linePattern = regexp.MustCompile(`^\[(\d+:\d+:\d+)\] \[([^\]/]+)/(\w+)\](?: \[(.+?)\])?: (.*)$`)

// LogLine is a parsed log line
type LogLine struct {
	Time    time.Time
	Thread  string
	Level   string
	Tag     string
	Message string
	Garbage bool
}

func (l LogLine) String() string {
	if l.Garbage {
		return l.Message
	}
	if l.Tag == "" {
		return fmt.Sprintf("[%s] [%s/%s]: %s", l.Time.Format(timeFormat), l.Thread, l.Level, l.Message)
	}
	return fmt.Sprintf(
		"[%s] [%s/%s] [%s]: %s",
		l.Time.Format(timeFormat),
		l.Thread,
		l.Level,
		l.Tag,
		l.Message,
	)
}

// IsError reports if the line was logged as ERROR or FATAL
func (l LogLine) IsError() bool {
	return l.Level == "ERROR" || l.Level == "FATAL"
}

// ParseLine parses a string into a `LogLine`. Lines that are not in the log
// format (stack traces for example) are returned as garbage
func ParseLine(input string) *LogLine {
	found := linePattern.FindStringSubmatch(input)
	if len(found) == 0 {
		return &LogLine{Garbage: true, Message: input}
	}
	time, err := time.Parse(timeFormat, found[1])
	if err != nil {
		return &LogLine{Garbage: true, Message: input}
	}

	return &LogLine{
		Time:    time,
		Thread:  found[2],
		Level:   found[3],
		Tag:     found[4],
		Message: found[5],
	}
}

// LastErrors returns the last n error lines of a log. Garbage lines directly
// following an error (its stack trace) are kept with it
func LastErrors(r io.Reader, n int) ([]*LogLine, error) {
	var errs []*LogLine
	inError := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := ParseLine(scanner.Text())
		switch {
		case line.IsError():
			inError = true
			errs = append(errs, line)
		case line.Garbage && inError:
			errs = append(errs, line)
		default:
			inError = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// keep whole errors only
	count := 0
	for i := len(errs) - 1; i >= 0; i-- {
		if errs[i].Garbage {
			continue
		}
		count++
		if count == n {
			return errs[i:], nil
		}
	}
	return errs, nil
}
