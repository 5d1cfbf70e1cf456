package interview

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/arunjadaun2002/FlyPrep/pkg/errs"
)

const DefaultMaxResumeBytes = 5 << 20

var acceptedResumeTypes = []string{
	"text/plain",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type Resume struct {
	Name string
	MIME string
	Size int
	// Text is only set for plain text uploads.
	Text string
}

// ReadResume reads an upload of at most maxBytes and sniffs its type from the
// content, ignoring the client supplied content type.
func ReadResume(name string, r io.Reader, maxBytes int64) (Resume, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxResumeBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Resume{}, fmt.Errorf("read resume: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return Resume{}, fmt.Errorf("%w: resume exceeds %d bytes", errs.ErrTooLarge, maxBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Resume{}, fmt.Errorf("%w: resume is empty", errs.ErrUnsupported)
	}

	mt := mimetype.Detect(data)
	if !accepted(mt) {
		return Resume{}, fmt.Errorf("%w: %s", errs.ErrUnsupported, mt.String())
	}

	res := Resume{Name: name, MIME: mt.String(), Size: len(data)}
	if mt.Is("text/plain") && utf8.Valid(data) {
		res.Text = string(data)
	}
	return res, nil
}

func accepted(mt *mimetype.MIME) bool {
	for _, want := range acceptedResumeTypes {
		if mt.Is(want) {
			return true
		}
	}
	return false
}
