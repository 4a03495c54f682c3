package therapist

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/pkg/errors"
)

// maxUploadSize caps what Upload will buffer
const maxUploadSize = 10 << 20

// uploadService implements the UploadService interface
type uploadService struct {
	client *Client
}

// Upload buffers r and posts it as multipart form data. The content is held
// in memory so the request can be replayed after a token refresh.
func (s *uploadService) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if r == nil {
		return nil, errors.New("upload reader is required")
	}

	content, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read upload")
	}
	if len(content) > maxUploadSize {
		return nil, errors.Errorf("upload exceeds %d bytes", maxUploadSize)
	}

	form := &Form{
		Files: []FormFile{{
			FieldName: "file",
			FileName:  filepath.Base(filename),
			Content:   content,
		}},
	}

	var result UploadResult
	req := &Request{
		Method:    http.MethodPost,
		Endpoint:  EndpointUpload,
		Body:      form,
		Multipart: true,
	}
	if _, err := s.client.doRequest(ctx, req, &result); err != nil {
		return nil, errors.Wrap(err, "failed to upload file")
	}
	return &result, nil
}
