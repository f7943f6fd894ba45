package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func newRouter(h *JournalHandler) *gin.Engine {
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})
	r.GET("/runs", func(c *gin.Context) {
		h.GetAllRuns((*ginext.Context)(c))
	})
	r.GET("/runs/:id", func(c *gin.Context) {
		h.GetRun((*ginext.Context)(c))
	})
	r.GET("/runs/:id/files", func(c *gin.Context) {
		h.GetRunFiles((*ginext.Context)(c))
	})
	return r
}

func TestJournalHandler_Ping(t *testing.T) {
	r := newRouter(NewJournalHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func TestJournalHandler_GetAllRuns(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		mock       *mockJournalService
		wantStatus int
	}{
		{
			name: "success",
			url:  "/runs?page=2&limit=5&sort=uid&order=ascend",
			mock: &mockJournalService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
					require.Equal(t, 2, req.Page)
					require.Equal(t, 5, req.Limit)
					require.Equal(t, "uid", req.Sort)
					require.Equal(t, "ascend", req.Order)
					return []model.Run{{UID: uuid.New(), Total: 3}}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "bad page",
			url:        "/runs?page=abc",
			mock:       &mockJournalService{},
			wantStatus: 400,
		},
		{
			name: "service error",
			url:  "/runs",
			mock: &mockJournalService{
				getListFn: func(ctx context.Context, req *model.ListRequest) ([]model.Run, error) {
					return nil, model.ErrCommon500
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(NewJournalHandler(tt.mock))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestJournalHandler_GetRun(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: 200},
		{name: "bad id", err: model.ErrIncorrectID, wantStatus: 400},
		{name: "not found", err: model.ErrRunNotFound, wantStatus: 404},
		{name: "internal", err: model.ErrCommon500, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockJournalService{
				getFn: func(ctx context.Context, got string) (*model.Run, error) {
					require.Equal(t, id.String(), got)
					if tt.err != nil {
						return nil, tt.err
					}
					return &model.Run{UID: id, Total: 2, Succeeded: 1, Failed: 1}, nil
				},
			}
			r := newRouter(NewJournalHandler(mock))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+id.String(), nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.err != nil {
				return
			}

			var run model.Run
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
			require.Equal(t, id, run.UID)
			require.Equal(t, 1, run.Failed)
		})
	}
}

func TestJournalHandler_GetRunFiles(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		files      []model.FileEvent
		err        error
		wantStatus int
		wantLen    int
	}{
		{
			name: "success",
			files: []model.FileEvent{
				{RunID: id, File: "a.png", Status: model.StatusSucceeded},
				{RunID: id, File: "b.png", Status: model.StatusFailed, Stage: model.StageDecode, ErrMsg: "decode: broken"},
			},
			wantStatus: 200,
			wantLen:    2,
		},
		{name: "not found", err: model.ErrRunNotFound, wantStatus: 404},
		{name: "unexpected error", err: errors.New("boom"), wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockJournalService{
				getFilesFn: func(ctx context.Context, got string) ([]model.FileEvent, error) {
					return tt.files, tt.err
				},
			}
			r := newRouter(NewJournalHandler(mock))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/runs/"+id.String()+"/files", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.err != nil {
				return
			}

			var files []model.FileEvent
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &files))
			require.Len(t, files, tt.wantLen)
			require.Equal(t, model.StageDecode, files[1].Stage)
		})
	}
}

func TestErrorCodeDefiner(t *testing.T) {
	require.Equal(t, 500, errorCodeDefiner(model.ErrCommon500))
	require.Equal(t, 404, errorCodeDefiner(model.ErrRunNotFound))
	require.Equal(t, 400, errorCodeDefiner(model.ErrIncorrectID))
	require.Equal(t, 400, errorCodeDefiner(model.ErrIncorrectQuery))
	require.Equal(t, 500, errorCodeDefiner(errors.New("unknown")))
}
