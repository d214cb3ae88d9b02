package launcher

import (
	"bytes"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xcraft/xcraft/internals/downloadmgr"
)

func TestShowProgress_Lines(t *testing.T) {
	buf := &bytes.Buffer{}
	err := ShowProgress(buf, false, func(updates chan<- downloadmgr.Update) error {
		updates <- downloadmgr.Update{Percent: 3, Label: "Downloading libraries"}
		updates <- downloadmgr.Update{Percent: 5, Label: "Downloading libraries"}
		updates <- downloadmgr.Update{Percent: 12, Label: "Downloading libraries"}
		updates <- downloadmgr.Update{Percent: 14, Label: "Downloading client.jar"}
		updates <- downloadmgr.Update{Percent: 100, Label: downloadmgr.LabelDone}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "  3% Downloading libraries\n" +
		" 12% Downloading libraries\n" +
		" 14% Downloading client.jar\n" +
		"Done\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestShowProgress_Error(t *testing.T) {
	boom := errors.New("boom")
	err := ShowProgress(&bytes.Buffer{}, false, func(updates chan<- downloadmgr.Update) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected the error of run, got %v", err)
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = newProgressModel()

	m, cmd := m.Update(downloadmgr.Update{Percent: 40, Label: "Downloading assets objects"})
	if cmd != nil {
		t.Error("progress updates should not quit")
	}
	if got := m.(progressModel); got.percent != 40 || got.label != "Downloading assets objects" {
		t.Errorf("unexpected model state %+v", got)
	}

	m, cmd = m.Update(downloadmgr.Update{Percent: 100, Label: downloadmgr.LabelDone})
	if cmd == nil {
		t.Fatal("the sentinel should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a quit message")
	}
	if m.(progressModel).label != "Done" {
		t.Error("label should read Done")
	}
}
