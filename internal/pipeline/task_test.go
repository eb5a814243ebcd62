package pipeline

import (
	"context"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	declerrors "github.com/standardbeagle/declscan/internal/errors"
	"github.com/standardbeagle/declscan/internal/filter"
)

func TestFileTask_Execute(t *testing.T) {
	files := newMemoryFiles(map[string]string{
		"src/App.swift":    "class App",
		"src/Logo.swift":   "\x89PNG\r\n\x1a\n....",
		"src/Notes.txt":    "plain text",
		"src/Empty.swift":  "",
		"src/Pods/X.swift": "class X",
	})
	chain := filter.NewChain(
		filter.NewSourcePathFilter([]string{".swift"}, nil, []string{"Pods"}),
		filter.BinaryContentFilter{},
	)

	t.Run("accepted file carries content and digest", func(t *testing.T) {
		outcome, err := NewFileTask("src/App.swift").Execute(context.Background(), chain, files.read)
		require.NoError(t, err)

		process, ok := outcome.(ShouldProcess)
		require.True(t, ok, "expected ShouldProcess, got %T", outcome)
		assert.Equal(t, "src/App.swift", process.FilePath())
		assert.Equal(t, []byte("class App"), process.Content)
		assert.Equal(t, xxhash.Sum64String("class App"), process.Digest)
	})

	t.Run("path rejection never reads the file", func(t *testing.T) {
		for _, path := range []string{"src/Notes.txt", "src/Pods/X.swift"} {
			outcome, err := NewFileTask(path).Execute(context.Background(), chain, files.read)
			require.NoError(t, err)

			skip, ok := outcome.(Skip)
			require.True(t, ok, "expected Skip for %s, got %T", path, outcome)
			assert.Equal(t, filter.PhasePath, skip.Reason.Phase)
			assert.Equal(t, "source-path", skip.Reason.Filter)
			assert.Zero(t, files.readCount(path), "%s should not be read", path)
		}
	})

	t.Run("content rejection after exactly one read", func(t *testing.T) {
		outcome, err := NewFileTask("src/Logo.swift").Execute(context.Background(), chain, files.read)
		require.NoError(t, err)

		skip, ok := outcome.(Skip)
		require.True(t, ok, "expected Skip, got %T", outcome)
		assert.Equal(t, filter.Rejection{Filter: "binary", Phase: filter.PhaseContent}, skip.Reason)
		assert.Equal(t, 1, files.readCount("src/Logo.swift"))
	})

	t.Run("empty file is accepted", func(t *testing.T) {
		outcome, err := NewFileTask("src/Empty.swift").Execute(context.Background(), chain, files.read)
		require.NoError(t, err)
		assert.IsType(t, ShouldProcess{}, outcome)
	})

	t.Run("unreadable file is a read error", func(t *testing.T) {
		outcome, err := NewFileTask("src/Missing.swift").Execute(context.Background(), chain, files.read)
		require.Error(t, err)
		assert.Nil(t, outcome)

		var fileErr *declerrors.FileError
		require.ErrorAs(t, err, &fileErr)
		assert.Equal(t, declerrors.ErrorTypeFileNotFound, fileErr.Type)
		assert.Equal(t, declerrors.StageRead, declerrors.StageOf(err))
	})

	t.Run("canceled context stops before reading", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewFileTask("src/Empty.swift").Execute(ctx, chain, files.read)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, files.readCount("src/Empty.swift"), "only the earlier subtest read it")
	})
}

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Sources/App.swift", "swift"},
		{"Main.JAVA", "java"},
		{"Makefile", ""},
		{"archive.tar.gz", "gz"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageOf(tt.path))
			assert.Equal(t, tt.want, NewFileTask(tt.path).Language)
		})
	}
}
