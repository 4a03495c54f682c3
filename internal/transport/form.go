package transport

import (
	"bytes"
	"mime/multipart"
	"sort"

	"github.com/pkg/errors"
)

// Form is a multipart/form-data body. File contents are held in memory so the
// same Form can be sent again after a token refresh.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is a single file part
type FormFile struct {
	FieldName string
	FileName  string
	Content   []byte
}

// encode writes the form and returns the body with its content type
func (f *Form) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := writer.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", errors.Wrapf(err, "failed to write %s field", k)
		}
	}

	for _, file := range f.Files {
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to create form file")
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, "", errors.Wrap(err, "failed to write file data")
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to close multipart writer")
	}

	return &buf, writer.FormDataContentType(), nil
}
