package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/dshills/minui/internal/event"
)

// Print writes the session report, then the registry dump and the document
// when requested.
func (app *Application) Print(s *Session) error {
	w := app.opts.Stdout
	if err := writeReport(w, s); err != nil {
		return err
	}
	if app.opts.Dump {
		if err := writeDump(w, s.UI.Events(), app.opts.Color); err != nil {
			return NewOperationError("dump", "registry", err)
		}
	}
	if app.opts.HTML {
		if err := s.Doc.Render(w); err != nil {
			return NewOperationError("render", app.opts.DocPath, err)
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	return nil
}

func writeReport(w io.Writer, s *Session) error {
	ew := &errWriter{w: w}

	if s.Bindings != nil {
		ok := 0
		for _, r := range s.Applied.Registrations {
			if r.OK() {
				ok++
			}
		}
		ew.printf("bindings: %d/%d registered, %d blueprints mounted\n",
			ok, len(s.Bindings.Bindings), len(s.Applied.Mounted))
	}
	if s.UI != nil {
		if keys := s.UI.Events().Keys(); len(keys) > 0 {
			ew.printf("holders: %s\n", strings.Join(keys, ", "))
		}
	}
	for _, warn := range s.Warnings {
		ew.printf("warning: %v\n", warn)
	}

	for _, step := range s.Report.Steps {
		ew.printf("%s\n", step)
	}
	if n := len(s.Report.Steps); n > 0 {
		ew.printf("replay: %d/%d steps delivered\n", s.Report.Delivered(), n)
	}

	if s.HasStats {
		st := s.Stats
		ew.printf("handlers: dispatched=%d succeeded=%d failed=%d panicked=%d skipped=%d avg=%s\n",
			st.Dispatched, st.Succeeded, st.Failed, st.Panicked, st.Skipped, st.AvgDuration)
	}
	return ew.err
}

func writeDump(w io.Writer, snap event.Snapshot, color bool) error {
	data, err := event.MarshalSnapshot(snap)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if color {
		data = pretty.Color(data, pretty.TerminalStyle)
	}
	_, err = w.Write(data)
	return err
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
