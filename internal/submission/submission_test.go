package submission

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentconnect/intake/internal/catalog"
	"github.com/studentconnect/intake/internal/config"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/hooks"
	"github.com/studentconnect/intake/internal/nats"
	"github.com/studentconnect/intake/internal/receipt"
)

func sampleSubmission(id, first, last string) form.Submission {
	st := form.NewFormState().WithStep(form.StepReview)
	st, _ = st.WithField(form.FieldFirstName, first)
	st, _ = st.WithField(form.FieldLastName, last)
	st = st.WithSubjectToggled("physics")
	st, _ = st.WithMark("physics", form.MarkCurrent, "60")
	st, _ = st.WithMark("physics", form.MarkTarget, "80")
	st = st.WithPaymentDate("2025-03-14")

	return form.Submission{
		ID:          id,
		State:       st,
		Review:      form.Derive(st, catalog.Default(), catalog.DefaultPricing()),
		SubmittedAt: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestStore_SubmitAndList(t *testing.T) {
	ctx := context.Background()
	emb, err := nats.Open(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("failed to open NATS: %v", err)
	}
	defer emb.Close()

	store := NewStore(emb.JS, emb.Stream)

	t.Run("List on empty stream", func(t *testing.T) {
		records, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Submit acknowledges with stream position", func(t *testing.T) {
		ack, err := store.Submit(ctx, sampleSubmission("id-1", "Jane", "Doe"))
		require.NoError(t, err)
		assert.Equal(t, "id-1", ack.ID)
		assert.Equal(t, "Jane Doe", ack.Reference)
		assert.Equal(t, nats.StreamName+"#1", ack.Location)
	})

	t.Run("List returns submissions in order", func(t *testing.T) {
		_, err := store.Submit(ctx, sampleSubmission("id-2", "Amal", "Perera"))
		require.NoError(t, err)

		records, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "id-1", records[0].Submission.ID)
		assert.Equal(t, "Amal Perera", records[1].Submission.Review.PaymentReference)
		assert.Equal(t, "80", records[1].Submission.State.Marks["physics"].Target)
	})

	t.Run("Duplicate submission ID is stored once", func(t *testing.T) {
		_, err := store.Submit(ctx, sampleSubmission("id-2", "Amal", "Perera"))
		require.NoError(t, err)

		records, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}

func TestFile_WritesReceiptAndPayload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	f := File{
		Dir:     dir,
		Details: receipt.Details{Account: catalog.DefaultPaymentAccount(), Venue: "Hall A"},
	}

	ack, err := f.Submit(context.Background(), sampleSubmission("0123456789abcdef", "Jane", "Doe"))
	require.NoError(t, err)

	wantBase := filepath.Join(dir, "2025-03-10-jane-doe-01234567")
	assert.Equal(t, wantBase+".md", ack.Location)

	md, err := os.ReadFile(wantBase + ".md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "- **Reference:** Jane Doe")
	assert.Contains(t, string(md), "Hall A")

	raw, err := os.ReadFile(wantBase + ".json")
	require.NoError(t, err)
	var sub form.Submission
	require.NoError(t, json.Unmarshal(raw, &sub))
	assert.Equal(t, "0123456789abcdef", sub.ID)
	assert.Equal(t, []string{"physics"}, sub.State.Subjects)
}

func TestLog_Acknowledges(t *testing.T) {
	ack, err := Log{}.Submit(context.Background(), sampleSubmission("id-9", "Jane", "Doe"))
	require.NoError(t, err)
	assert.Equal(t, "id-9", ack.ID)
	assert.Empty(t, ack.Location)
}

func TestMulti(t *testing.T) {
	var order []string
	record := func(name, location string, err error) form.Submitter {
		return form.SubmitterFunc(func(_ context.Context, sub form.Submission) (form.Ack, error) {
			order = append(order, name)
			return form.Ack{ID: sub.ID, Location: location}, err
		})
	}

	t.Run("fans out in order and keeps first location", func(t *testing.T) {
		order = nil
		m := Multi{record("log", "", nil), record("nats", "stream#4", nil), record("file", "r.md", nil)}

		ack, err := m.Submit(context.Background(), sampleSubmission("id-1", "Jane", "Doe"))
		require.NoError(t, err)
		assert.Equal(t, []string{"log", "nats", "file"}, order)
		assert.Equal(t, "id-1", ack.ID)
		assert.Equal(t, "stream#4", ack.Location)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		order = nil
		boom := errors.New("disk full")
		m := Multi{record("a", "", nil), record("b", "", boom), record("c", "", nil)}

		_, err := m.Submit(context.Background(), sampleSubmission("id-1", "Jane", "Doe"))
		require.ErrorIs(t, err, boom)
		assert.True(t, strings.HasPrefix(err.Error(), "submitter 1:"))
		assert.Equal(t, []string{"a", "b"}, order)
	})

	t.Run("empty fan-out is an error", func(t *testing.T) {
		_, err := Multi{}.Submit(context.Background(), sampleSubmission("id-1", "Jane", "Doe"))
		require.Error(t, err)
	})
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("single submitter is used directly", func(t *testing.T) {
		cfg := config.Default()
		cfg.Submitters = []string{config.SubmitterLog}

		p, err := Build(ctx, cfg)
		require.NoError(t, err)
		defer p.Close()

		assert.IsType(t, Log{}, p.Submitter)
		assert.Nil(t, p.Store)
	})

	t.Run("nats and file fan out", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.Default()
		cfg.DataDir = filepath.Join(dir, "data")
		cfg.ReceiptsDir = filepath.Join(dir, "receipts")
		cfg.Submitters = []string{config.SubmitterNATS, config.SubmitterFile}

		p, err := Build(ctx, cfg)
		require.NoError(t, err)
		defer p.Close()

		require.NotNil(t, p.Store)
		multi, ok := p.Submitter.(Multi)
		require.True(t, ok, "expected Multi, got %T", p.Submitter)
		assert.Len(t, multi, 2)

		ack, err := p.Submitter.Submit(ctx, sampleSubmission("abc", "Jane", "Doe"))
		require.NoError(t, err)
		assert.Equal(t, nats.StreamName+"#1", ack.Location)

		entries, err := os.ReadDir(cfg.ReceiptsDir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("unknown submitter", func(t *testing.T) {
		cfg := config.Default()
		cfg.Submitters = []string{"carrier-pigeon"}
		_, err := Build(ctx, cfg)
		require.Error(t, err)
	})
}

func TestBuildIn_PostSubmitHooks(t *testing.T) {
	dir := t.TempDir()
	hooksYAML := "version: 1\nhooks:\n  post_submit:\n    - command: cat > hook-{{id}}.json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, hooks.ConfigFileName), []byte(hooksYAML), 0644))

	cfg := config.Default()
	cfg.Submitters = []string{config.SubmitterLog}

	p, err := BuildIn(context.Background(), cfg, dir)
	require.NoError(t, err)
	defer p.Close()

	hooked, ok := p.Submitter.(Hooked)
	require.True(t, ok, "expected Hooked, got %T", p.Submitter)
	assert.IsType(t, Log{}, hooked.Next)

	ack, err := p.Submitter.Submit(context.Background(), sampleSubmission("abc", "Jane", "Doe"))
	require.NoError(t, err)
	assert.Equal(t, "abc", ack.ID)

	data, err := os.ReadFile(filepath.Join(dir, "hook-abc.json"))
	require.NoError(t, err)
	var got form.Submission
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Jane Doe", got.Review.PaymentReference)
}

func TestHooked_SubmitterErrorSkipsHooks(t *testing.T) {
	dir := t.TempDir()
	failing := form.SubmitterFunc(func(context.Context, form.Submission) (form.Ack, error) {
		return form.Ack{}, errors.New("down")
	})
	h := Hooked{Next: failing, Hooks: []*hooks.HookConfig{{Command: "touch ran"}}, WorkDir: dir}

	_, err := h.Submit(context.Background(), sampleSubmission("abc", "Jane", "Doe"))
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "ran"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHooked_HookFailureKeepsAck(t *testing.T) {
	h := Hooked{Next: Log{}, Hooks: []*hooks.HookConfig{{Command: "exit 1"}}, WorkDir: t.TempDir()}

	ack, err := h.Submit(context.Background(), sampleSubmission("abc", "Jane", "Doe"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", ack.Reference)
}

func TestSQLite_SubmitAndList(t *testing.T) {
	ctx := context.Background()
	path := SQLitePath(filepath.Join(t.TempDir(), "data"))

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	ack, err := db.Submit(ctx, sampleSubmission("id-1", "Jane", "Doe"))
	require.NoError(t, err)
	assert.Equal(t, path+"#1", ack.Location)
	assert.Equal(t, "Jane Doe", ack.Reference)

	_, err = db.Submit(ctx, sampleSubmission("id-2", "John", "Smith"))
	require.NoError(t, err)

	// Same ID again is acknowledged without a second row
	again, err := db.Submit(ctx, sampleSubmission("id-1", "Jane", "Doe"))
	require.NoError(t, err)
	assert.Equal(t, ack.Location, again.Location)

	records, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint64(1), records[0].Sequence)
	assert.Equal(t, "Jane Doe", records[0].Submission.Review.PaymentReference)
	assert.Equal(t, "John Smith", records[1].Submission.Review.PaymentReference)
	assert.Equal(t, "80", records[1].Submission.State.Marks["physics"].Target)
}

func TestBuild_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Submitters = []string{config.SubmitterSQLite}

	p, err := BuildIn(context.Background(), cfg, dir)
	require.NoError(t, err)
	require.NotNil(t, p.SQLite)
	assert.Same(t, p.SQLite, p.Submitter)

	_, err = p.Submitter.Submit(context.Background(), sampleSubmission("abc", "Jane", "Doe"))
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Nil(t, p.SQLite)

	_, err = os.Stat(SQLitePath(dir))
	assert.NoError(t, err)
}
