package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	docs []string
	err  error
}

func (s *recordingSink) Post(_ context.Context, doc string) error {
	s.docs = append(s.docs, doc)
	return s.err
}

func TestFormat_NoTruncation(t *testing.T) {
	doc, truncated := Format("R", DefaultMaxLength)
	assert.Equal(t, Header+"R"+Footer, doc)
	assert.False(t, truncated)
}

func TestFormat_Truncation(t *testing.T) {
	const limit = 100
	body := strings.Repeat("a", 500)

	doc, truncated := Format(body, limit)
	require.True(t, truncated)
	assert.Equal(t, limit+utf8.RuneCountInString(TruncationNotice), utf8.RuneCountInString(doc))
	assert.True(t, strings.HasSuffix(doc, TruncationNotice))
	assert.Equal(t, (Header + body + Footer)[:limit], strings.TrimSuffix(doc, TruncationNotice))
}

func TestFormat_ExactlyAtCap(t *testing.T) {
	body := "xyz"
	limit := utf8.RuneCountInString(Header + body + Footer)
	doc, truncated := Format(body, limit)
	assert.Equal(t, Header+body+Footer, doc)
	assert.False(t, truncated)

	doc, truncated = Format(body, limit-1)
	assert.NotEqual(t, Header+body+Footer, doc)
	assert.True(t, truncated)
}

func TestFormat_MultibyteCutOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("日本語", 200)
	limit := utf8.RuneCountInString(Header) + 10

	doc, _ := Format(body, limit)
	assert.True(t, utf8.ValidString(doc))
	assert.Equal(t, Header+strings.Repeat("日本語", 3)+"日"+TruncationNotice, doc)
}

func TestFormat_NoCap(t *testing.T) {
	body := strings.Repeat("b", 1000)
	doc, truncated := Format(body, 0)
	assert.Equal(t, Header+body+Footer, doc)
	assert.False(t, truncated)
}

func TestDeliver_WritesArtifactThenPosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "review.md")
	sink := &recordingSink{}

	doc, truncated, err := Delivery{ArtifactPath: path, MaxLength: DefaultMaxLength}.Deliver(context.Background(), "R", sink)
	require.NoError(t, err)
	assert.Equal(t, Header+"R"+Footer, doc)
	assert.False(t, truncated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
	assert.Equal(t, []string{doc}, sink.docs)
}

func TestDeliver_ArtifactSurvivesSinkFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.md")
	sinkErr := errors.New("post failed")
	sink := &recordingSink{err: sinkErr}

	doc, _, err := Delivery{ArtifactPath: path, MaxLength: DefaultMaxLength}.Deliver(context.Background(), "kept", sink)
	require.ErrorIs(t, err, sinkErr)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, doc, string(data))
}

func TestDeliver_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.md")
	d := Delivery{ArtifactPath: path, MaxLength: DefaultMaxLength}

	_, _, err := d.Deliver(context.Background(), "same", &recordingSink{})
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	_, _, err = d.Deliver(context.Background(), "same", &recordingSink{})
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, Header+"same"+Footer, string(second))
}

func TestDeliver_OverwritesLongerPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.md")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("old", 10000)), 0o644))

	_, _, err := Delivery{ArtifactPath: path, MaxLength: DefaultMaxLength}.Deliver(context.Background(), "new", &recordingSink{})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"new"+Footer, string(data))
}

func TestDeliver_ArtifactFailureSkipsSink(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	sink := &recordingSink{}

	_, truncated, err := Delivery{ArtifactPath: filepath.Join(blocker, "review.md"), MaxLength: 10}.Deliver(context.Background(), "x", sink)
	var ae *ArtifactError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, filepath.Join(blocker, "review.md"), ae.Path)
	assert.Empty(t, sink.docs)
	assert.True(t, truncated, "truncation is reported even when the artifact fails")
}

func TestDeliver_TruncatedDocumentStored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.md")
	body := strings.Repeat("z", 300)

	sink := &recordingSink{}
	doc, truncated, err := Delivery{ArtifactPath: path, MaxLength: 120}.Deliver(context.Background(), body, sink)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Equal(t, []string{doc}, sink.docs)
	assert.Equal(t, 120+len(TruncationNotice), utf8.RuneCountInString(doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))
}
