package uploads

import (
	"bytes"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "public", "uploads"))
	require.NoError(t, err)
	store.now = func() time.Time { return time.Unix(0, 1700000000000000000) }
	return store
}

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestSave(t *testing.T) {
	store := newStore(t)

	file, err := store.Save(fileHeader(t, "summer shirt.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "summer-shirt-1700000000000000000.png", file.Name)

	content, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, content)

	assert.Equal(t, "http://shop.test/public/uploads/summer-shirt-1700000000000000000.png", store.URL("http://shop.test/", file))
}

func TestSave_UsesDetectedExtension(t *testing.T) {
	store := newStore(t)

	file, err := store.Save(fileHeader(t, "photo.jpg", gifHeader))
	require.NoError(t, err)
	assert.Equal(t, "photo-1700000000000000000.gif", file.Name)
}

func TestSave_RejectsInvalidFiles(t *testing.T) {
	store := newStore(t)

	tests := []struct {
		name     string
		filename string
		content  []byte
	}{
		{"text with image extension", "notes.png", []byte("hello world")},
		{"image with wrong extension", "shirt.txt", pngHeader},
		{"no extension", "shirt", pngHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Save(fileHeader(t, tt.filename, tt.content))
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSave_SameNanosecondFails(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(fileHeader(t, "a.png", pngHeader))
	require.NoError(t, err)
	_, err = store.Save(fileHeader(t, "a.png", pngHeader))
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestRemove(t *testing.T) {
	store := newStore(t)

	file, err := store.Save(fileHeader(t, "a.png", pngHeader))
	require.NoError(t, err)

	require.NoError(t, store.Remove(file))
	_, err = os.Stat(file.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.NoError(t, store.Remove(file))
	assert.NoError(t, store.Remove(nil))
}

func TestURL_EscapesName(t *testing.T) {
	store := newStore(t)

	file, err := store.Save(fileHeader(t, "cover #1?%.png", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "cover-#1?%-1700000000000000000.png", file.Name)

	imageURL := store.URL("http://shop.test", file)
	assert.Equal(t, "http://shop.test/public/uploads/cover-%231%3F%25-1700000000000000000.png", imageURL)

	parsed, err := url.Parse(imageURL)
	require.NoError(t, err)
	assert.Empty(t, parsed.RawQuery)
	assert.Empty(t, parsed.Fragment)
	assert.Equal(t, "/public/uploads/"+file.Name, parsed.Path)

	found := store.FromURL(imageURL)
	require.NotNil(t, found)
	assert.Equal(t, file.Path, found.Path)
}

func TestFromURL(t *testing.T) {
	store := newStore(t)

	file := store.FromURL("http://shop.test/public/uploads/a-1.png")
	require.NotNil(t, file)
	assert.Equal(t, filepath.Join(store.Dir, "a-1.png"), file.Path)

	for _, imageURL := range []string{
		"http://elsewhere.test/images/a.png",
		"http://shop.test/public/uploads/",
		"http://shop.test/public/uploads/..",
		"http://shop.test/public/uploads/..%2Fsecret.png",
		"http://shop.test/public/uploads/%zz",
		"",
	} {
		assert.Nil(t, store.FromURL(imageURL), imageURL)
	}
}
