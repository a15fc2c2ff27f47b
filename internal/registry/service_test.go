package registry

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/rfaguiar/manifestops/internal/common"
	"github.com/rfaguiar/manifestops/internal/dbx"
	"github.com/rfaguiar/manifestops/internal/logging"
	"github.com/rfaguiar/manifestops/internal/manifest"
	"github.com/rfaguiar/manifestops/internal/session"
	"github.com/rfaguiar/manifestops/internal/store/attachments"
	"github.com/rfaguiar/manifestops/internal/store/audit"
	"github.com/rfaguiar/manifestops/internal/store/manifests"
	"github.com/rfaguiar/manifestops/internal/store/operators"
)

// ---- fakes ----

type fakeManifests struct {
	byID     map[string]manifest.Manifest
	latestID string
	getErr   error
}

func (f *fakeManifests) ListRecent(ctx context.Context, limit int) ([]manifest.Manifest, error) {
	out := make([]manifest.Manifest, 0, len(f.byID))
	for _, m := range f.byID {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeManifests) Get(ctx context.Context, id string) (*manifest.Manifest, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	m, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := m
	return &copied, nil
}

func (f *fakeManifests) Insert(ctx context.Context, m *manifest.Manifest) error {
	f.byID[m.ID] = *m
	return nil
}

func (f *fakeManifests) Update(ctx context.Context, m *manifest.Manifest) error {
	if _, ok := f.byID[m.ID]; !ok {
		return common.ErrNotFound
	}
	f.byID[m.ID] = *m
	return nil
}

func (f *fakeManifests) LatestIDForPrefix(ctx context.Context, prefix string) (string, error) {
	if f.latestID == "" {
		return "", common.ErrNotFound
	}
	return f.latestID, nil
}

type fakeAudit struct {
	entries []manifest.AuditEntry
	err     error
}

func (f *fakeAudit) Append(ctx context.Context, e *manifest.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) ListByManifest(ctx context.Context, manifestID string) ([]manifest.AuditEntry, error) {
	var out []manifest.AuditEntry
	for _, e := range f.entries {
		if e.ManifestID == manifestID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeManager struct {
	m *fakeManifests
	a *fakeAudit
}

func (f *fakeManager) Manifests(db dbx.DBTX) manifests.Repository     { return f.m }
func (f *fakeManager) Audit(db dbx.DBTX) audit.Repository             { return f.a }
func (f *fakeManager) Operators(db dbx.DBTX) operators.Repository     { return nil }
func (f *fakeManager) Attachments(db dbx.DBTX) attachments.Repository { return nil }
func (f *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testSession() *session.Session {
	return &session.Session{
		OperatorID:  "op-1",
		Username:    "mmartins",
		DisplayName: "Marina Martins",
		Role:        "operator",
	}
}

func newFixture(t *testing.T) (*Service, *fakeManifests, *fakeAudit) {
	t.Helper()

	// The transaction wrapper needs a live *sql.DB even though the data
	// lives in the fakes.
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := &fakeManifests{byID: map[string]manifest.Manifest{}}
	a := &fakeAudit{}

	svc := NewService(db, &fakeManager{m: m, a: a}, testLogger())
	svc.now = func() time.Time {
		return time.Date(2024, 4, 3, 9, 30, 0, 0, time.Local)
	}
	return svc, m, a
}

func registered(t *testing.T, svc *Service) *manifest.Manifest {
	t.Helper()

	pulled := time.Date(2024, 4, 3, 9, 0, 0, 0, time.Local)
	received := pulled.Add(8 * time.Minute)
	m, err := svc.Register(context.Background(), testSession(), manifest.Registration{
		Carrier:    "JJ",
		PulledAt:   &pulled,
		ReceivedAt: &received,
	})
	require.NoError(t, err)
	return m
}

// ---- tests ----

func TestRegister_FirstIDOfYear(t *testing.T) {
	svc, store, auditLog := newFixture(t)

	m := registered(t, svc)
	require.Equal(t, "MAO-240000001", m.ID)
	require.Equal(t, manifest.StatusReceived, m.Status)
	require.Contains(t, store.byID, m.ID)

	require.Len(t, auditLog.entries, 1)
	require.Equal(t, manifest.ActionRegister, auditLog.entries[0].Action)
	require.Equal(t, "mmartins", auditLog.entries[0].Actor)
}

func TestRegister_IncrementsLatestID(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.latestID = "MAO-240001137"

	m := registered(t, svc)
	require.Equal(t, "MAO-240001138", m.ID)
}

func TestRegister_MalformedLatestID(t *testing.T) {
	svc, store, _ := newFixture(t)
	store.latestID = "MAO-24abc"

	pulled := time.Date(2024, 4, 3, 9, 0, 0, 0, time.Local)
	_, err := svc.Register(context.Background(), testSession(), manifest.Registration{
		Carrier:  "JJ",
		PulledAt: &pulled,
	})
	require.Error(t, err)
}

func TestRegister_ValidationLeavesNoState(t *testing.T) {
	svc, store, auditLog := newFixture(t)

	_, err := svc.Register(context.Background(), testSession(), manifest.Registration{
		Carrier: "JJ", // pulled instant missing
	})
	require.ErrorIs(t, err, common.ErrMissingRequiredField)
	require.Empty(t, store.byID)
	require.Empty(t, auditLog.entries)
}

func TestLifecycle_HappyPath(t *testing.T) {
	svc, _, auditLog := newFixture(t)
	ctx := context.Background()
	sess := testSession()

	m := registered(t, svc)

	m, err := svc.Start(ctx, sess, m.ID)
	require.NoError(t, err)
	require.Equal(t, manifest.StatusStarted, m.Status)
	require.Equal(t, "mmartins", m.AssignedTo)

	m, err = svc.Finalize(ctx, sess, m.ID)
	require.NoError(t, err)
	require.Equal(t, manifest.StatusFinalized, m.Status)

	m, err = svc.RecordSignature(ctx, sess, m.ID)
	require.NoError(t, err)
	require.True(t, m.Signed())

	m, err = svc.Deliver(ctx, sess, m.ID)
	require.NoError(t, err)
	require.Equal(t, manifest.StatusDelivered, m.Status)

	actions := make([]manifest.Action, 0, len(auditLog.entries))
	for _, e := range auditLog.entries {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []manifest.Action{
		manifest.ActionRegister,
		manifest.ActionStart,
		manifest.ActionFinalize,
		manifest.ActionSignature,
		manifest.ActionDeliver,
	}, actions)
}

func TestDeliver_WithoutSignatureRollsBack(t *testing.T) {
	svc, store, auditLog := newFixture(t)
	ctx := context.Background()
	sess := testSession()

	m := registered(t, svc)
	_, err := svc.Start(ctx, sess, m.ID)
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, sess, m.ID)
	require.NoError(t, err)

	_, err = svc.Deliver(ctx, sess, m.ID)
	require.ErrorIs(t, err, common.ErrSignatureRequired)

	require.Equal(t, manifest.StatusFinalized, store.byID[m.ID].Status)
	require.Len(t, auditLog.entries, 3, "a blocked transition must not add an audit entry")
}

func TestTransition_UnknownManifest(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Start(context.Background(), testSession(), "MAO-249999999")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestEdit_JustificationFlowsIntoAudit(t *testing.T) {
	svc, store, auditLog := newFixture(t)
	ctx := context.Background()

	m := registered(t, svc)

	updated, err := svc.Edit(ctx, testSession(), m.ID, manifest.Edit{Carrier: "ad"}, "fixed typo")
	require.NoError(t, err)
	require.Equal(t, "AD", updated.Carrier)
	require.Equal(t, "AD", store.byID[m.ID].Carrier)

	last := auditLog.entries[len(auditLog.entries)-1]
	require.Equal(t, manifest.ActionEdit, last.Action)
	require.Equal(t, "fixed typo", last.Justification)
}

func TestEdit_ShortJustificationRejected(t *testing.T) {
	svc, store, _ := newFixture(t)

	m := registered(t, svc)

	_, err := svc.Edit(context.Background(), testSession(), m.ID, manifest.Edit{Carrier: "AD"}, "ok")
	require.ErrorIs(t, err, common.ErrJustificationTooShort)
	require.Equal(t, "JJ", store.byID[m.ID].Carrier)
}

func TestCancel_FromStarted(t *testing.T) {
	svc, store, _ := newFixture(t)
	ctx := context.Background()
	sess := testSession()

	m := registered(t, svc)
	_, err := svc.Start(ctx, sess, m.ID)
	require.NoError(t, err)

	m, err = svc.Cancel(ctx, sess, m.ID)
	require.NoError(t, err)
	require.Equal(t, manifest.StatusCanceled, m.Status)
	require.Equal(t, manifest.StatusCanceled, store.byID[m.ID].Status)
}
