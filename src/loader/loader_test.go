package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askdoc/src/core/document"
	"askdoc/src/loader"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadUnsupportedExtension(t *testing.T) {
	r := loader.NewRegistry()

	for _, name := range []string{"notes.txt", "archive.zip", "message.msg", "noextension"} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Load(writeFile(t, name, "content"))

			var loadErr *document.LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.ErrorContains(t, err, "unsupported file type")
		})
	}
}

func TestLoadDispatchIsCaseInsensitive(t *testing.T) {
	r := loader.NewRegistry()

	path := writeFile(t, "MESSAGE.EML", "Subject: Hello\nFrom: a@example.com\n\nBody text.\n")
	units, err := r.Load(path)
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestLoadEmailPlainText(t *testing.T) {
	raw := "Subject: Quarterly report\n" +
		"From: alice@example.com\n" +
		"\n" +
		"The revenue grew by 12 percent.\n"
	path := writeFile(t, "report.eml", raw)

	units, err := loader.NewRegistry().Load(path)
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Contains(t, units[0].Text, "Subject: Quarterly report")
	assert.Contains(t, units[0].Text, "From: alice@example.com")
	assert.Contains(t, units[0].Text, "revenue grew by 12 percent")
	assert.Equal(t, "report.eml", units[0].Metadata[document.MetaSource])
	assert.Equal(t, "Quarterly report", units[0].Metadata["subject"])
	assert.Equal(t, "alice@example.com", units[0].Metadata["sender"])
}

func TestLoadEmailMultipartPicksPlainPart(t *testing.T) {
	raw := "Subject: Mixed message\n" +
		"From: bob@example.com\n" +
		"MIME-Version: 1.0\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\n" +
		"\n" +
		"--sep\n" +
		"Content-Type: text/html; charset=utf-8\n" +
		"\n" +
		"<p>HTML body</p>\n" +
		"--sep\n" +
		"Content-Type: text/plain; charset=utf-8\n" +
		"\n" +
		"Plain body wins.\n" +
		"--sep--\n"
	path := writeFile(t, "mixed.eml", raw)

	units, err := loader.NewRegistry().Load(path)
	require.NoError(t, err)
	require.Len(t, units, 1)

	assert.Contains(t, units[0].Text, "Plain body wins.")
	assert.NotContains(t, units[0].Text, "HTML body")
}

func TestLoadEmailGarbageFails(t *testing.T) {
	path := writeFile(t, "broken.eml", "this is not an rfc822 message")

	_, err := loader.NewRegistry().Load(path)
	var loadErr *document.LoadError
	require.ErrorAs(t, err, &loadErr)
}
