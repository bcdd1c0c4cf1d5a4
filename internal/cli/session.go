package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/aretw0/naas/pkg/session"
)

// ListSessions prints the stored session ids.
func ListSessions(ctx context.Context, m *session.Manager, out io.Writer) error {
	ids, err := m.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}

	slices.Sort(ids)
	fmt.Fprintln(out, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(out, "- "+id)
	}
	return nil
}

// InspectSession prints the stored snapshot as indented JSON.
func InspectSession(ctx context.Context, m *session.Manager, sessionID string, out io.Writer) error {
	snap, err := m.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", sessionID, err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling session: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RemoveSessions deletes every id, reporting each outcome. All ids are
// attempted even when one fails.
func RemoveSessions(ctx context.Context, m *session.Manager, ids []string, out io.Writer) error {
	var errs []error
	for _, id := range ids {
		if err := m.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(out, "Removed session '%s'\n", id)
	}
	return errors.Join(errs...)
}
