package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/types"
)

func TestSourceBuffer_Text(t *testing.T) {
	buf := NewSourceBuffer("A.java", []byte("class A { void run() {} }"))

	text, err := buf.Text(15, 18)
	require.NoError(t, err)
	assert.Equal(t, "run", text)

	_, err = buf.Text(10, 500)
	var encErr *snerrors.EncodingError
	assert.True(t, errors.As(err, &encErr))
}

func TestSourceBuffer_TextInvalidUTF8(t *testing.T) {
	buf := NewSourceBuffer("bad.java", []byte{'a', 0xff, 0xfe, 'b'})

	_, err := buf.Text(0, 4)
	var encErr *snerrors.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, uint(0), encErr.StartByte)
	assert.Equal(t, uint(4), encErr.EndByte)
}

func TestSourceBuffer_Slice(t *testing.T) {
	buf := NewSourceBuffer("x.cs", []byte("0123456789"))

	got, err := buf.Slice(types.ByteRange{Start: 2, End: 5})
	require.NoError(t, err)
	assert.Equal(t, "234", string(got))

	_, err = buf.Slice(types.ByteRange{Start: 5, End: 11})
	assert.Error(t, err)

	empty, err := buf.Slice(types.ByteRange{Start: 10, End: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSourceBuffer_LineAt(t *testing.T) {
	buf := NewSourceBuffer("x.java", []byte("line1\nline2\nline3"))

	assert.Equal(t, 1, buf.LineAt(0))
	assert.Equal(t, 1, buf.LineAt(5))
	assert.Equal(t, 2, buf.LineAt(6))
	assert.Equal(t, 3, buf.LineAt(16))

	empty := NewSourceBuffer("e.java", nil)
	assert.Equal(t, 1, empty.LineAt(0))
}

func TestSourceBuffer_SameContent(t *testing.T) {
	a := NewSourceBuffer("a.java", []byte("class A {}"))
	b := NewSourceBuffer("b.java", []byte("class A {}"))
	c := NewSourceBuffer("c.java", []byte("class C {}"))

	assert.Equal(t, a.FastHash, b.FastHash)
	assert.True(t, a.SameContent(b))
	assert.False(t, a.SameContent(c))
	assert.False(t, a.SameContent(nil))
}

func TestLoadSourceBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Service.java")
	require.NoError(t, os.WriteFile(path, []byte("class Service {}\n"), 0644))

	buf, err := LoadSourceBuffer(path, 0)
	require.NoError(t, err)
	assert.Equal(t, path, buf.Path)
	assert.Equal(t, 17, buf.Len())

	t.Run("too large", func(t *testing.T) {
		_, err := LoadSourceBuffer(path, 4)
		var fileErr *snerrors.FileError
		require.True(t, errors.As(err, &fileErr))
		assert.Equal(t, snerrors.ErrorTypeFileTooBig, fileErr.Type)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadSourceBuffer(filepath.Join(dir, "nope.java"), 0)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadSourceBuffer(dir, 0)
		var fileErr *snerrors.FileError
		assert.True(t, errors.As(err, &fileErr))
	})
}
