package httpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/domain"
)

func TestValidateAttachments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		atts    []attachmentDTO
		wantErr bool
	}{
		{name: "empty list", atts: nil},
		{
			name: "pdf with matching type",
			atts: []attachmentDTO{{Filename: "brief.pdf", URL: "https://files.example.com/brief.pdf", ContentType: "application/pdf"}},
		},
		{
			name: "jpeg variant extension",
			atts: []attachmentDTO{{Filename: "mockup.jpeg", URL: "https://files.example.com/mockup.jpeg", ContentType: "image/jpeg"}},
		},
		{
			name: "no declared content type",
			atts: []attachmentDTO{{Filename: "notes.txt", URL: "https://files.example.com/notes.txt"}},
		},
		{
			name:    "disallowed extension",
			atts:    []attachmentDTO{{Filename: "payload.exe", URL: "https://files.example.com/payload.exe"}},
			wantErr: true,
		},
		{
			name:    "unknown content type",
			atts:    []attachmentDTO{{Filename: "brief.pdf", URL: "https://files.example.com/brief.pdf", ContentType: "application/x-made-up"}},
			wantErr: true,
		},
		{
			name:    "content type extension mismatch",
			atts:    []attachmentDTO{{Filename: "brief.pdf", URL: "https://files.example.com/brief.pdf", ContentType: "image/png"}},
			wantErr: true,
		},
		{
			name: "second attachment fails",
			atts: []attachmentDTO{
				{Filename: "brief.pdf", URL: "https://files.example.com/brief.pdf", ContentType: "application/pdf"},
				{Filename: "demo.sh", URL: "https://files.example.com/demo.sh"},
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validateAttachments(tc.atts)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAllowedExt(t *testing.T) {
	t.Parallel()

	assert.True(t, allowedExt("Resume.PDF"))
	assert.True(t, allowedExt("archive.zip"))
	assert.False(t, allowedExt("script.js"))
	assert.False(t, allowedExt("no-extension"))
}
