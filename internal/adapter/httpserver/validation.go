package httpserver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/skillsync/skillsync/internal/domain"
)

// allowedExt is the attachment extension allowlist. Attachment bytes live with
// the external storage collaborator; only references pass through here.
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".doc", ".docx", ".txt", ".png", ".jpg", ".jpeg", ".zip":
		return true
	}
	return false
}

// validateAttachments checks attachment references before they are stored:
// the extension must be allowlisted, and a declared content type must be a
// known MIME whose canonical extension agrees with the filename.
func validateAttachments(atts []attachmentDTO) error {
	for _, a := range atts {
		if !allowedExt(a.Filename) {
			return fmt.Errorf("%w: attachment %q has an unsupported extension", domain.ErrInvalidArgument, a.Filename)
		}
		if a.ContentType == "" {
			continue
		}
		m := mimetype.Lookup(a.ContentType)
		if m == nil {
			return fmt.Errorf("%w: attachment %q declares unknown content type %q", domain.ErrInvalidArgument, a.Filename, a.ContentType)
		}
		ext := strings.ToLower(filepath.Ext(a.Filename))
		if !extMatches(m, ext) {
			return fmt.Errorf("%w: attachment %q content type %q does not match extension", domain.ErrInvalidArgument, a.Filename, a.ContentType)
		}
	}
	return nil
}

// extMatches walks the detected MIME and its ancestors, accepting when any
// level's canonical extension equals ext. jpeg/jpg get special-cased since
// mimetype canonicalizes to .jpg.
func extMatches(m *mimetype.MIME, ext string) bool {
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	for cur := m; cur != nil; cur = cur.Parent() {
		if cur.Extension() == ext {
			return true
		}
	}
	// text/plain covers .txt only; generic types with no extension pass
	return m.Extension() == ""
}
