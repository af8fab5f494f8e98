package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
)

// MaxDocumentBytes bounds how much of a reader [ReadJSON] consumes.
const MaxDocumentBytes = 8 << 20

// ReadJSON decodes a survey document from r and validates it.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or the results block has an unknown form
//   - category_names is missing, empty or contains duplicates
//   - results is missing
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dataset.Document, error) {
	var doc dataset.Document
	dec := json.NewDecoder(io.LimitReader(r, MaxDocumentBytes))
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "decode: %v", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportJSON reads a JSON file at path and returns the decoded document.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. A missing file is reported as MISSING_UPLOAD.
func ImportJSON(path string) (*dataset.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeMissingUpload, err, "file not found: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
