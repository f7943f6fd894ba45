// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

type (
	Status string
	Stage  string
)

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var StatusMap = map[Status]bool{
	StatusSucceeded: true,
	StatusFailed:    true,
}

// Stage - шаг обработки файла, на котором произошла ошибка
const (
	StageDecode    Stage = "decode"
	StageResize    Stage = "resize"
	StageComposite Stage = "composite"
	StageEncode    Stage = "encode"
	StageWrite     Stage = "write"
	StageDelete    Stage = "delete"
)

//---------------------

const (
	DefaultWatermarkPath  = "watermark.png"
	DefaultOpacity        = 0.3
	DefaultWatermarkScale = 1.0
	// DefaultSpacing is the gap between tiles when nothing else is configured.
	// The CLI uses CLISpacing instead and warns about it.
	DefaultSpacing = 0
	CLISpacing     = 50
)

// WatermarkOptions describes how the watermark tile is prepared once per run.
type WatermarkOptions struct {
	Path    string  `json:"watermark"`
	Scale   float64 `json:"watermark_scale"`
	Opacity float64 `json:"opacity"`
}

func NewWatermarkOptions() WatermarkOptions {
	return WatermarkOptions{
		Path:    DefaultWatermarkPath,
		Scale:   DefaultWatermarkScale,
		Opacity: DefaultOpacity,
	}
}

func (o WatermarkOptions) Validate() error {
	if strings.TrimSpace(o.Path) == "" {
		return ErrEmptyWatermark
	}
	if o.Scale <= 0 {
		return fmt.Errorf("%w: %v", ErrIncorrectScale, o.Scale)
	}
	if o.Opacity < 0 {
		return fmt.Errorf("%w: %v", ErrIncorrectOpacity, o.Opacity)
	}
	return nil
}

// BatchOptions describes one pass over an input directory.
type BatchOptions struct {
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	ErrorDir  string `json:"error_dir,omitempty"`
	MaxWidth  int    `json:"max_width"`
	MaxHeight int    `json:"max_height"`
	Spacing   int    `json:"spacing"`
}

func (o BatchOptions) Validate() error {
	if strings.TrimSpace(o.InputDir) == "" {
		return ErrEmptyInput
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return ErrEmptyOutput
	}
	if o.MaxWidth < 0 || o.MaxHeight < 0 {
		return ErrIncorrectBounds
	}
	if o.Spacing < 0 {
		return ErrIncorrectSpacing
	}
	// выход в ту же папку: удаление исходника снесет результат
	if filepath.Clean(o.InputDir) == filepath.Clean(o.OutputDir) {
		return ErrSameDirs
	}
	if o.ErrorDir != "" && filepath.Clean(o.InputDir) == filepath.Clean(o.ErrorDir) {
		return ErrSameDirs
	}
	return nil
}

//---------------------

// FileError is a per-file failure tagged with the stage it happened at.
type FileError struct {
	Stage Stage
	Err   error
}

func NewFileError(stage Stage, err error) *FileError {
	return &FileError{Stage: stage, Err: err}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches the stage sentinel, so errors.Is(err, ErrDecode) works on any wrapped FileError.
func (e *FileError) Is(target error) bool {
	return stageErrors[e.Stage] == target
}

// Outcome is the result of processing one input file.
type Outcome struct {
	Name      string `json:"file"`
	Status    Status `json:"status"`
	Stage     Stage  `json:"stage,omitempty"`
	Err       error  `json:"-"`
	Routed    bool   `json:"routed"`
	Resized   bool   `json:"resized"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	OutputKey string `json:"output_key,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// Fail turns the outcome into a failure; the stage is taken from a FileError when there is one.
func (o *Outcome) Fail(err error) {
	o.Status = StatusFailed
	o.Err = err
	var fe *FileError
	if errors.As(err, &fe) {
		o.Stage = fe.Stage
	}
}

// Run is one batch invocation as seen by the journal.
type Run struct {
	UID        uuid.UUID        `json:"uid"`
	Batch      BatchOptions     `json:"batch"`
	Watermark  WatermarkOptions `json:"watermark"`
	Total      int              `json:"total"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

func (r *Run) Count(o Outcome) {
	r.Total++
	if o.Succeeded() {
		r.Succeeded++
		return
	}
	r.Failed++
}

// FileEvent is what gets published to the queue and stored in the journal per file.
type FileEvent struct {
	RunID     uuid.UUID  `json:"run_uid"`
	File      string     `json:"file"`
	Status    Status     `json:"status"`
	Stage     Stage      `json:"stage,omitempty"`
	ErrMsg    string     `json:"error,omitempty"`
	Routed    bool       `json:"routed"`
	Resized   bool       `json:"resized"`
	OutputKey string     `json:"output_key,omitempty"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	At        *time.Time `json:"processed_at,omitempty"`
}

func NewFileEvent(runID uuid.UUID, o Outcome, at time.Time) FileEvent {
	ev := FileEvent{
		RunID:     runID,
		File:      o.Name,
		Status:    o.Status,
		Stage:     o.Stage,
		Routed:    o.Routed,
		Resized:   o.Resized,
		OutputKey: o.OutputKey,
		Width:     o.Width,
		Height:    o.Height,
		At:        &at,
	}
	if o.Err != nil {
		ev.ErrMsg = o.Err.Error()
	}
	return ev
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByUUID    = "uid"
	ByStarted = "started"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

var (
	ErrDecode    = errors.New("failed to decode image")
	ErrResize    = errors.New("failed to resize image")
	ErrComposite = errors.New("failed to composite watermark")
	ErrEncode    = errors.New("failed to encode image")
	ErrWrite     = errors.New("failed to write output")
	ErrDelete    = errors.New("failed to delete source")
)

var stageErrors = map[Stage]error{
	StageDecode:    ErrDecode,
	StageResize:    ErrResize,
	StageComposite: ErrComposite,
	StageEncode:    ErrEncode,
	StageWrite:     ErrWrite,
	StageDelete:    ErrDelete,
}

var (
	ErrEmptyInput       error = errors.New("input directory is required")
	ErrEmptyOutput      error = errors.New("output location is required")
	ErrEmptyWatermark   error = errors.New("watermark path is required")
	ErrSameDirs         error = errors.New("output and error locations must differ from the input directory")
	ErrIncorrectBounds  error = errors.New("max width/height must not be negative")
	ErrIncorrectSpacing error = errors.New("spacing must not be negative")
	ErrIncorrectScale   error = errors.New("watermark scale must be positive")
	ErrIncorrectOpacity error = errors.New("opacity must not be negative")
	ErrDestinationTaken error = errors.New("destination already exists")
)

var (
	ErrCommon500      error = errors.New("something went wrong. Try again later") // 500
	ErrIncorrectQuery error = errors.New("incorrect query parameters")            // 400
	ErrIncorrectID    error = errors.New("incorrect run UUID")                    // 400
	ErrRunNotFound    error = errors.New("specified run UUID doesn't exist")      // 404
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
	TIFF = "image/tiff"
	BMP  = "image/bmp"
	WEBP = "image/webp"
)

var GetCType = map[imaging.Format]string{
	imaging.JPEG: JPEG,
	imaging.PNG:  PNG,
	imaging.GIF:  GIF,
	imaging.TIFF: TIFF,
	imaging.BMP:  BMP,
}
