package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectForSubmission(t *testing.T) {
	tests := []struct {
		reference string
		want      string
	}{
		{"Jane Doe", "intake.submissions.jane-doe"},
		{"J. R. R. Tolkien", "intake.submissions.j-r-r-tolkien"},
		{" ", "intake.submissions.anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			assert.Equal(t, tt.want, SubjectForSubmission(tt.reference))
		})
	}
}

func TestOpen_CreatesStream(t *testing.T) {
	ctx := context.Background()
	emb, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, emb.Close()) }()

	info, err := emb.Stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreamName, info.Config.Name)
	assert.Equal(t, []string{"intake.submissions.>"}, info.Config.Subjects)

	_, err = emb.JS.Publish(ctx, SubjectForSubmission("Jane Doe"), []byte(`{}`))
	require.NoError(t, err)

	info, err = emb.Stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}
