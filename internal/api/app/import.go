package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"tskit/internal/usecase/importer"
)

type ImportAPI struct {
	svc *importer.Service
}

func NewImportAPI(svc *importer.Service) *ImportAPI { return &ImportAPI{svc: svc} }

type ImportRequest struct {
	ProjectID int64  `json:"project_id"`
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	Locale    string `json:"locale"`
	// Content is base64-encoded text bytes
	ContentB64 string `json:"content_b64"`
}

type ImportResponse struct {
	FileID       int64  `json:"file_id"`
	Units        int    `json:"units"`
	Translations int    `json:"translations"`
	Locale       string `json:"locale"`
}

func (a *ImportAPI) ImportBase64(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	b, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		return ImportResponse{}, err
	}
	return a.importBytes(ctx, req, b)
}

// ImportFile reads req.Filename from disk.
func (a *ImportAPI) ImportFile(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	b, err := os.ReadFile(req.Filename)
	if err != nil {
		return ImportResponse{}, fmt.Errorf("read %s: %w", req.Filename, err)
	}
	return a.importBytes(ctx, req, b)
}

func (a *ImportAPI) importBytes(ctx context.Context, req ImportRequest, b []byte) (ImportResponse, error) {
	res, err := a.svc.Import(ctx, importer.ImportArgs{ProjectID: req.ProjectID, Filename: req.Filename, Format: req.Format, Locale: req.Locale, Content: b})
	if err != nil {
		return ImportResponse{}, err
	}
	return ImportResponse{FileID: res.FileID, Units: res.Units, Translations: res.Translations, Locale: res.Locale}, nil
}
