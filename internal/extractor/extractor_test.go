package extractor

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localsearch/filesearch/internal/core/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDispatchTablePlaintext(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "hello world")
	result, err := New().Extract(path, domain.FileTypeText)
	require.NoError(t, err)
	assert.Equal(t, "hello world", result.Text)
}

func TestDispatchTableCodeUsesRawContent(t *testing.T) {
	path := writeTempFile(t, "main.go", "package main\n\nfunc parse_json() {}\n")
	result, err := New().Extract(path, domain.FileTypeCode)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "parse_json")
}

func TestDispatchTableMarkdownStripsFormatting(t *testing.T) {
	path := writeTempFile(t, "readme.md", "# Title\n\nSome **bold** text.")
	result, err := New().Extract(path, domain.FileTypeMarkdown)
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "#")
	assert.NotContains(t, result.Text, "**")
	assert.Contains(t, result.Text, "Title")
	assert.Contains(t, result.Text, "bold")
}

func TestDispatchTableRoutesHTMLByExtension(t *testing.T) {
	path := writeTempFile(t, "page.html", "<html><body><p>Hello</p><script>evil()</script></body></html>")
	result, err := New().Extract(path, domain.FileTypeText)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Hello")
	assert.NotContains(t, result.Text, "evil")
}

func TestDispatchTableUnsupportedTypesReturnEmpty(t *testing.T) {
	path := writeTempFile(t, "photo.jpg", "not-really-a-jpeg")
	for _, ft := range []domain.FileType{domain.FileTypePdf, domain.FileTypeImage, domain.FileTypeOther} {
		result, err := New().Extract(path, ft)
		require.NoError(t, err)
		assert.Empty(t, result.Text)
	}
}

func TestDispatchTableMissingFileReturnsIOErr(t *testing.T) {
	_, err := New().Extract(filepath.Join(t.TempDir(), "missing.txt"), domain.FileTypeText)
	assert.ErrorIs(t, err, domain.ErrIO)
}

func createTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	doc, _ := w.Create("word/document.xml")
	doc.Write([]byte(documentXML))

	require.NoError(t, w.Close())

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestDispatchTableDocxExtractsParagraphs(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
</w:body>
</w:document>`
	path := createTestDOCX(t, docXML)

	result, err := New().Extract(path, domain.FileTypeDocx)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "First paragraph")
	assert.Contains(t, result.Text, "Second paragraph")
}

func TestDispatchTableDocxInvalidZip(t *testing.T) {
	path := writeTempFile(t, "broken.docx", "not a zip file")
	_, err := New().Extract(path, domain.FileTypeDocx)
	assert.ErrorIs(t, err, domain.ErrExtract)
}

func TestStripMarkdownCollapsesLists(t *testing.T) {
	out := stripMarkdown("- one\n- two\n1. three\n")
	assert.NotContains(t, out, "-")
	assert.Contains(t, out, "one")
	assert.Contains(t, out, "three")
}

func TestStripHTMLDropsStyleAndComments(t *testing.T) {
	out := stripHTML(`<style>body{color:red}</style><!-- hidden --><p>visible</p>`)
	assert.Equal(t, "visible", out)
}
