package app

import (
	"context"
	"encoding/base64"

	"tskit/internal/usecase/exporter"
)

type ExportAPI struct{ svc *exporter.Service }

func NewExportAPI(s *exporter.Service) *ExportAPI { return &ExportAPI{svc: s} }

type ExportFileRequest struct {
	FileID         int64  `json:"file_id"`
	Locale         string `json:"locale"`
	OverrideFormat string `json:"override_format"`
	Fallback       bool   `json:"fallback"`
	Separator      string `json:"separator"`
}

type ExportFileResponse struct {
	Filename   string `json:"filename"`
	ContentB64 string `json:"content_b64"`
}

func (a *ExportAPI) ExportFile(ctx context.Context, req ExportFileRequest) (exporter.ExportResult, error) {
	return a.svc.ExportFile(ctx, exporter.ExportArgs{
		FileID:         req.FileID,
		Locale:         req.Locale,
		Fallback:       req.Fallback,
		OverrideFormat: req.OverrideFormat,
		Separator:      req.Separator,
	})
}

func (a *ExportAPI) ExportFileBase64(ctx context.Context, req ExportFileRequest) (ExportFileResponse, error) {
	res, err := a.ExportFile(ctx, req)
	if err != nil {
		return ExportFileResponse{}, err
	}
	return ExportFileResponse{Filename: res.Filename, ContentB64: base64.StdEncoding.EncodeToString(res.Content)}, nil
}
