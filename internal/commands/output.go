package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/fleetctl/internal/app"
	"github.com/samvad-hq/fleetctl/pkg/fleet"
)

// writeBody prints a response body, indented when it is JSON.
func writeBody(w io.Writer, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			buf.WriteByte('\n')
			_, err = w.Write(buf.Bytes())
			return err
		}
	}
	_, err := fmt.Fprintln(w, string(body))
	return err
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type callFunc func(ctx context.Context, c *app.Commander) (*fleet.Response, error)

// call runs fn against the commander, prints the body and turns a non-2xx
// status into the command error.
func (s *session) call(cmd *cobra.Command, fn callFunc) error {
	c, err := s.runtime(cmd.Context())
	if err != nil {
		return err
	}
	resp, err := fn(cmd.Context(), c)
	if err != nil {
		return err
	}
	if err := writeBody(cmd.OutOrStdout(), resp.Body); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return resp.Err()
}
