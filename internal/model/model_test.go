package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBatchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    BatchOptions
		wantErr error
	}{
		{name: "ok", opts: BatchOptions{InputDir: "in", OutputDir: "out", ErrorDir: "err", MaxWidth: 10, Spacing: 50}},
		{name: "ok without error folder", opts: BatchOptions{InputDir: "in", OutputDir: "out"}},
		{name: "empty input", opts: BatchOptions{InputDir: "  ", OutputDir: "out"}, wantErr: ErrEmptyInput},
		{name: "empty output", opts: BatchOptions{InputDir: "in"}, wantErr: ErrEmptyOutput},
		{name: "negative width", opts: BatchOptions{InputDir: "in", OutputDir: "out", MaxWidth: -1}, wantErr: ErrIncorrectBounds},
		{name: "negative height", opts: BatchOptions{InputDir: "in", OutputDir: "out", MaxHeight: -1}, wantErr: ErrIncorrectBounds},
		{name: "negative spacing", opts: BatchOptions{InputDir: "in", OutputDir: "out", Spacing: -3}, wantErr: ErrIncorrectSpacing},
		{name: "output is input", opts: BatchOptions{InputDir: "./in", OutputDir: "in/"}, wantErr: ErrSameDirs},
		{name: "error is input", opts: BatchOptions{InputDir: "in", OutputDir: "out", ErrorDir: "in"}, wantErr: ErrSameDirs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWatermarkOptions_Validate(t *testing.T) {
	require.NoError(t, NewWatermarkOptions().Validate())
	require.NoError(t, WatermarkOptions{Path: "wm.png", Scale: 3, Opacity: 1.5}.Validate())

	require.ErrorIs(t, WatermarkOptions{Scale: 1, Opacity: 0.3}.Validate(), ErrEmptyWatermark)
	require.ErrorIs(t, WatermarkOptions{Path: "wm.png", Scale: 0, Opacity: 0.3}.Validate(), ErrIncorrectScale)
	require.ErrorIs(t, WatermarkOptions{Path: "wm.png", Scale: 1, Opacity: -0.1}.Validate(), ErrIncorrectOpacity)
}

func TestFileError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := fmt.Errorf("a.png: %w", NewFileError(StageDecode, cause))

	require.ErrorIs(t, err, ErrDecode)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrEncode)
	require.Equal(t, "a.png: decode: unexpected EOF", err.Error())
}

func TestOutcome_FailAndCount(t *testing.T) {
	run := &Run{}

	ok := Outcome{Name: "a.png", Status: StatusSucceeded}
	run.Count(ok)

	bad := Outcome{Name: "b.png"}
	bad.Fail(NewFileError(StageWrite, errors.New("disk full")))
	require.Equal(t, StatusFailed, bad.Status)
	require.Equal(t, StageWrite, bad.Stage)
	run.Count(bad)

	plain := Outcome{Name: "c.png"}
	plain.Fail(errors.New("no stage"))
	require.Equal(t, Stage(""), plain.Stage)
	run.Count(plain)

	require.Equal(t, 3, run.Total)
	require.Equal(t, 1, run.Succeeded)
	require.Equal(t, 2, run.Failed)
}

func TestNewFileEvent(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	o := Outcome{Name: "b.png", Routed: true}
	o.Fail(NewFileError(StageDecode, errors.New("broken")))

	ev := NewFileEvent(id, o, at)
	require.Equal(t, id, ev.RunID)
	require.Equal(t, "b.png", ev.File)
	require.Equal(t, StatusFailed, ev.Status)
	require.Equal(t, StageDecode, ev.Stage)
	require.Equal(t, "decode: broken", ev.ErrMsg)
	require.True(t, ev.Routed)
	require.Equal(t, at, *ev.At)

	ok := NewFileEvent(id, Outcome{Name: "a.png", Status: StatusSucceeded, OutputKey: "out/a.png"}, at)
	require.Empty(t, ok.ErrMsg)
	require.Equal(t, "out/a.png", ok.OutputKey)
}
