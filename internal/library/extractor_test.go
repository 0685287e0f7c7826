package library

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
)

type stubRunner struct {
	stdout []byte
	err    error
	calls  []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	return s.stdout, nil, s.err
}

type stubEnhancer struct {
	text  string
	conf  float32
	err   error
	calls int
}

func (s *stubEnhancer) Enhance(context.Context, string, string) (string, float32, error) {
	s.calls++
	return s.text, s.conf, s.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestExtractUsesPdftotextOutput(t *testing.T) {
	body := strings.Repeat("This page holds a decent amount of extracted text. ", 10)
	runner := &stubRunner{stdout: []byte(body + "\f" + body)}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner))

	content, err := e.Extract(context.Background(), "missing.pdf")
	require.NoError(t, err)
	assert.Contains(t, content.Text, "decent amount")
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "pdftotext -layout")
}

func TestExtractPageBoundsArgs(t *testing.T) {
	runner := &stubRunner{stdout: []byte("page three text only")}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner))

	_, err := e.ExtractPage(context.Background(), "missing.pdf", 2)
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "-f 3")
	assert.Contains(t, runner.calls[0], "-l 3")
}

func TestExtractPageRejectsNegativeIndex(t *testing.T) {
	e := NewExtractor(libCfg(), discard(), WithRunner(&stubRunner{}))
	_, err := e.ExtractPage(context.Background(), "missing.pdf", -1)
	assert.Error(t, err)
}

func TestExtractFailsWhenBothPathsFail(t *testing.T) {
	// pdftotext errors and the file does not exist for the reader fallback.
	runner := &stubRunner{err: errors.New("exit status 1")}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner))

	_, err := e.Extract(context.Background(), "definitely-missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext")
}

func TestExtractAdoptsOCRWhenMuchLonger(t *testing.T) {
	enhanced := strings.Repeat("recovered by ocr ", 30)
	enh := &stubEnhancer{text: enhanced, conf: 0.55}
	runner := &stubRunner{stdout: []byte("thin")}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner), WithEnhancer(enh))

	content, err := e.Extract(context.Background(), "missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, enh.calls)
	assert.Contains(t, content.Text, "recovered by ocr")
}

func TestExtractKeepsLibraryTextWhenOCRBarelyLonger(t *testing.T) {
	enh := &stubEnhancer{text: "still thin", conf: 0.5}
	runner := &stubRunner{stdout: []byte("thin text")}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner), WithEnhancer(enh))

	content, err := e.Extract(context.Background(), "missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, enh.calls)
	assert.Equal(t, "thin text", content.Text)
}

func TestExtractSkipsOCRWhenTextIsRichEnough(t *testing.T) {
	enh := &stubEnhancer{text: "unused", conf: 0.9}
	runner := &stubRunner{stdout: []byte(strings.Repeat("plenty of clean text here ", 20))}
	e := NewExtractor(libCfg(), discard(), WithRunner(runner), WithEnhancer(enh))

	_, err := e.Extract(context.Background(), "missing.pdf")
	require.NoError(t, err)
	assert.Zero(t, enh.calls)
}

func libCfg() common.LibraryConfig {
	return common.LibraryConfig{Pdftotext: "pdftotext"}
}
