package writeback

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteAndStale(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)

	files := []File{
		{Path: "/pkg/colors_jqenum.go", Content: []byte("package pkg\n")},
		{Path: "/pkg/colors_jqenum_test.go", Content: []byte("package pkg\n\nimport \"testing\"\n")},
	}

	stale, err := w.Stale(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"/pkg/colors_jqenum.go", "/pkg/colors_jqenum_test.go"}, stale)

	require.NoError(t, w.Write(files))

	got, err := util.ReadFile(fs, "/pkg/colors_jqenum.go")
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", string(got))

	stale, err = w.Stale(files)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// No temp files are left behind.
	entries, err := fs.ReadDir("/pkg")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriter_StaleOnChangedContent(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/pkg/a.go", []byte("package old\n"), 0o644))

	stale, err := NewWriter(fs).Stale([]File{{Path: "/pkg/a.go", Content: []byte("package pkg\n")}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/pkg/a.go"}, stale)
}

func TestWriter_Overwrite(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)
	require.NoError(t, w.Write([]File{{Path: "/a.go", Content: []byte("one")}}))
	require.NoError(t, w.Write([]File{{Path: "/a.go", Content: []byte("two")}}))

	got, err := util.ReadFile(fs, "/a.go")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
}

func TestWriter_Delete(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)
	require.NoError(t, util.WriteFile(fs, "/pkg/colors_jqenum_test.go", []byte("package pkg\n"), 0o644))

	files := []File{
		{Path: "/pkg/colors_jqenum.go", Content: []byte("package pkg\n")},
		{Path: "/pkg/colors_jqenum_test.go", Delete: true},
	}
	stale, err := w.Stale(files)
	require.NoError(t, err)
	assert.Equal(t, []string{"/pkg/colors_jqenum.go", "/pkg/colors_jqenum_test.go"}, stale)

	require.NoError(t, w.Write(files))
	_, err = fs.Stat("/pkg/colors_jqenum_test.go")
	assert.ErrorIs(t, err, os.ErrNotExist)

	stale, err = w.Stale(files)
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Deleting an absent file is not an error.
	require.NoError(t, w.Write(files))
}
