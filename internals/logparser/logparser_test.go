package logparser

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		garbage bool
	}{
		{
			name:    "crap",
			arg:     "I am crap string",
			garbage: true,
		},
		{
			name: "tagged",
			arg:  "[13:46:33] [main/INFO] [FML]: Forge bla bla for Minecraft 1.12.2 loading",
		},
		{
			name: "untagged",
			arg:  "[08:12:01] [Render thread/WARN]: Failed to load sound",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := ParseLine(tt.arg)
			if line.Garbage != tt.garbage {
				t.Fatalf("garbage = %v, want %v", line.Garbage, tt.garbage)
			}
			if line.String() != tt.arg {
				t.Fatalf("Input %q did not produce same output: \nexpected %s\ngot      %s\n", tt.name, tt.arg, line.String())
			}
		})
	}
}

func TestLastErrors(t *testing.T) {
	log := strings.Join([]string{
		"[10:00:00] [main/INFO]: Setting user: Player",
		"[10:00:01] [main/ERROR]: first",
		"[10:00:02] [main/INFO]: fine again",
		"[10:00:03] [Render thread/FATAL]: Unreported exception thrown!",
		"java.lang.NullPointerException: null",
		"\tat net.minecraft.client.Minecraft.run(Minecraft.java:1)",
		"[10:00:04] [main/INFO]: Stopping!",
	}, "\n")

	errs, err := LastErrors(strings.NewReader(log), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 3 {
		t.Fatalf("expected the fatal line with its stack trace, got %d lines", len(errs))
	}
	if errs[0].Message != "Unreported exception thrown!" || !errs[1].Garbage {
		t.Errorf("unexpected lines %v", errs)
	}

	all, _ := LastErrors(strings.NewReader(log), 5)
	if len(all) != 4 || all[0].Message != "first" {
		t.Errorf("expected every error line, got %v", all)
	}
}
