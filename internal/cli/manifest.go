package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/netx"
	"github.com/rfaguiar/manifestops/internal/session"
)

// RegisterManifest interactively collects a registration and stores the new
// manifest. The pulled instant is mandatory; the received instant defaults
// to now when skipped.
func (a *App) RegisterManifest(ctx context.Context) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	carrier, err := getSimpleText(a.reader, "Carrier code (e.g. JJ)", a.out)
	if err != nil {
		return err
	}

	pulled, err := GetInstant(a.reader, "Pulled instant", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	received, err := GetInstant(a.reader, "Received instant", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	shiftRaw, err := getSimpleText(a.reader, "Shift 1-3 (empty to derive from received hour)", a.out)
	if err != nil {
		return err
	}
	var shift manifest.Shift
	if shiftRaw != "" {
		n, convErr := strconv.Atoi(shiftRaw)
		if convErr != nil || n < 1 || n > 3 {
			fmt.Fprintln(a.out, "Shift must be 1, 2 or 3.")
			return convErr
		}
		shift = manifest.Shift(n)
	}

	m, err := a.registry.Register(ctx, a.sess, manifest.Registration{
		Carrier:    carrier,
		Shift:      shift,
		PulledAt:   pulled,
		ReceivedAt: received,
	})
	if err != nil {
		fmt.Fprintf(a.out, "Registration failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (%s, shift %d)\n", m.ID, m.Carrier, m.Shift)
	return a.poller.Refresh(ctx)
}

// transition runs one lifecycle operation and reports the outcome. The
// snapshot is refreshed right after so the board reflects the change
// without waiting for the next poll tick.
func (a *App) transition(ctx context.Context, id, verb string,
	op func(ctx context.Context, sess *session.Session, id string) (*manifest.Manifest, error),
) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	m, err := op(ctx, a.sess, id)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot %s %s: %v\n", verb, id, err)
		return err
	}

	fmt.Fprintf(a.out, "%s is now %s\n", m.ID, m.Status)
	return a.poller.Refresh(ctx)
}

func (a *App) Start(ctx context.Context, id string) error {
	return a.transition(ctx, id, "start", a.registry.Start)
}

func (a *App) Finalize(ctx context.Context, id string) error {
	return a.transition(ctx, id, "finalize", a.registry.Finalize)
}

func (a *App) Sign(ctx context.Context, id string) error {
	return a.transition(ctx, id, "sign", a.registry.RecordSignature)
}

func (a *App) Deliver(ctx context.Context, id string) error {
	return a.transition(ctx, id, "deliver", a.registry.Deliver)
}

func (a *App) Cancel(ctx context.Context, id string) error {
	return a.transition(ctx, id, "cancel", a.registry.Cancel)
}

// Edit interactively collects the corrected fields and a justification for
// a still-received manifest. Empty answers keep the current values.
func (a *App) Edit(ctx context.Context, id string) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	carrier, err := getSimpleText(a.reader, "New carrier code (empty to keep)", a.out)
	if err != nil {
		return err
	}

	pulled, err := GetInstant(a.reader, "New pulled instant", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	received, err := GetInstant(a.reader, "New received instant", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err.Error())
		return err
	}

	justification, err := getSimpleText(a.reader, "Justification for the edit", a.out)
	if err != nil {
		return err
	}

	m, err := a.registry.Edit(ctx, a.sess, id, manifest.Edit{
		Carrier:    carrier,
		PulledAt:   pulled,
		ReceivedAt: received,
	}, justification)
	if err != nil {
		fmt.Fprintf(a.out, "Edit failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Updated %s\n", m.ID)
	return a.poller.Refresh(ctx)
}

// Dossier renders the full drill-down view of one manifest.
func (a *App) Dossier(ctx context.Context, id string) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	d, err := a.dossiers.Get(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Dossier failed: %v\n", err)
		return err
	}

	renderDossier(a.out, d)
	return nil
}

// Attach uploads a local document to the manifest's object storage via a
// presigned PUT, then records the metadata row.
func (a *App) Attach(ctx context.Context, id string) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	path, err := getSimpleText(a.reader, "Path of the file to attach", a.out)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot read %s: %v\n", path, err)
		return err
	}

	att, url, err := a.attachments.Attach(ctx, a.sess, id, filepath.Base(path))
	if err != nil {
		fmt.Fprintf(a.out, "Attach failed: %v\n", err)
		return err
	}

	if err := netx.UploadToPresignedURL(ctx, url, data); err != nil {
		fmt.Fprintf(a.out, "Upload failed: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Attached %s as %s\n", att.FileName, att.ID)
	return nil
}

// Fetch downloads one attachment next to the current directory, named after
// the original file.
func (a *App) Fetch(ctx context.Context, manifestID, attachmentID string) error {
	if err := a.require(ctx); err != nil {
		return err
	}

	d, err := a.dossiers.Get(ctx, manifestID)
	if err != nil {
		fmt.Fprintf(a.out, "Fetch failed: %v\n", err)
		return err
	}
	name := attachmentID
	for _, f := range d.Attachments {
		if f.ID == attachmentID {
			name = f.FileName
			break
		}
	}

	url, err := a.attachments.DownloadURL(ctx, manifestID, attachmentID)
	if err != nil {
		fmt.Fprintf(a.out, "Fetch failed: %v\n", err)
		return err
	}

	dctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	data, err := netx.DownloadFromPresignedURL(dctx, url)
	if err != nil {
		fmt.Fprintf(a.out, "Download failed: %v\n", err)
		return err
	}

	if err := os.WriteFile(name, data, 0o600); err != nil {
		fmt.Fprintf(a.out, "Cannot write %s: %v\n", name, err)
		return err
	}

	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", name, len(data))
	return nil
}
