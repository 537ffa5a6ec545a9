package scratch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hbomb79/Rhea/internal/scratch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWithAge(t *testing.T, dir string, name string, age time.Duration) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	return path
}

func Test_New_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "scratch")
	store, err := scratch.New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Construction over an existing directory is idempotent
	_, err = scratch.New(dir)
	assert.NoError(t, err)
}

func Test_New_RejectsRegularFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := fileWithAge(t, dir, "occupied", 0)

	_, err := scratch.New(path)
	assert.Error(t, err)
}

func Test_AllocateTemplate_EmbedsKindTimestampAndTemplate(t *testing.T) {
	t.Parallel()

	store, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	requestedAt := time.Unix(1700000000, 0)
	template := store.AllocateTemplate(scratch.KindVideo, requestedAt)

	assert.True(t, strings.HasPrefix(template, store.Dir()))
	assert.Contains(t, filepath.Base(template), "video_1700000000_")
	assert.True(t, strings.HasSuffix(template, "%(title)s.%(ext)s"))
}

func Test_AllocateTemplate_UniqueForIdenticalRequests(t *testing.T) {
	t.Parallel()

	store, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	requestedAt := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		template := store.AllocateTemplate(scratch.KindAudio, requestedAt)
		assert.False(t, seen[template], "template %s allocated twice", template)
		seen[template] = true
	}
}

func Test_EvictStale_RemovesOnlyFilesOlderThanThreshold(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := scratch.New(dir)
	require.NoError(t, err)

	fresh := fileWithAge(t, dir, "fresh.mp4", 59*time.Minute)
	stale := fileWithAge(t, dir, "stale.mp4", 61*time.Minute)

	store.EvictStale(time.Hour)

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "file younger than threshold must survive the sweep")

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "file older than threshold must be removed")
}

func Test_EvictStale_IgnoresDirectoriesAndSurvivesMissingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := scratch.New(dir)
	require.NoError(t, err)

	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	stamp := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(nested, stamp, stamp))

	store.EvictStale(time.Hour)
	_, err = os.Stat(nested)
	assert.NoError(t, err, "sweep must only target regular files")

	// A store whose directory has gone away must log and return, not panic.
	require.NoError(t, os.RemoveAll(dir))
	assert.NotPanics(t, func() { store.EvictStale(time.Hour) })
}

func Test_ConfigOutputDir_DefaultsUnderTempDir(t *testing.T) {
	t.Parallel()

	config := scratch.Config{}
	assert.Equal(t, filepath.Join(os.TempDir(), "rhea-downloads"), config.OutputDir())

	config.Dir = "/custom/scratch"
	assert.Equal(t, "/custom/scratch", config.OutputDir())
}
