package admin

import (
	"context"
	"encoding/json"
	"strings"

	"nestadmin/internal/api"
)

// Files lists uploaded assets.
func (s *Service) Files(ctx context.Context, params ListParams) (Page[File], error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, api.MustPath(api.EndpointFilesList), params.Query(), &raw); err != nil {
		return Page[File]{}, err
	}
	return decodeList[File](raw, "files")
}

// DeleteFile removes an uploaded asset record.
func (s *Service) DeleteFile(ctx context.Context, id string) error {
	path, err := api.FilePath(id)
	if err != nil {
		return err
	}
	return s.client.Delete(ctx, path, nil)
}

// RegisterUpload records an asset already stored in object storage so it
// shows up in the file list.
func (s *Service) RegisterUpload(ctx context.Context, file File) (File, error) {
	if strings.TrimSpace(file.URL) == "" {
		return File{}, &api.Error{
			Kind:    api.KindValidation,
			Message: "File URL is required",
			Fields:  map[string]string{"url": "required"},
		}
	}
	var raw json.RawMessage
	if err := s.client.Post(ctx, api.MustPath(api.EndpointFilesUpload), file, &raw); err != nil {
		return File{}, err
	}
	stored := file
	if err := unwrapInto(raw, []string{"file", "data"}, &stored); err != nil {
		return File{}, err
	}
	return stored, nil
}
