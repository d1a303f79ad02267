package storage

import (
	"errors"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedContentType = errors.New("unsupported content type")

// UploadTicket pairs the URL a client PUTs bytes to with the URL the stored
// object is served from. The messaging layer persists only the public URL.
type UploadTicket struct {
	UploadURL string
	PublicURL string
}

// ObjectStorage is the external storage collaborator. Implementations own
// upload authorization and serving; no image validation happens here.
type ObjectStorage interface {
	PresignUpload(filename, contentType string) (UploadTicket, error)
}

// URLComposer composes ticket URLs from configured base endpoints. The object
// key is random so clients cannot overwrite each other's uploads.
type URLComposer struct {
	uploadBase string
	publicBase string
}

func NewURLComposer(uploadBase, publicBase string) *URLComposer {
	return &URLComposer{
		uploadBase: strings.TrimRight(uploadBase, "/"),
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

func (s *URLComposer) PresignUpload(filename, contentType string) (UploadTicket, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return UploadTicket{}, ErrUnsupportedContentType
	}

	ext := path.Ext(filename)
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	key := uuid.New().String() + ext
	return UploadTicket{
		UploadURL: s.uploadBase + "/" + key,
		PublicURL: s.publicBase + "/" + key,
	}, nil
}
