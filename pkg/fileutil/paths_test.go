package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arnavsurve/smokeshot/pkg/fileutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathFromConfig(t *testing.T) {
	got, err := fileutil.ResolvePathFromConfig("/work/site", "shots/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/work/site", "shots/a.png"), got)

	got, err = fileutil.ResolvePathFromConfig("/work/site", "/tmp/../tmp/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.png", got)

	_, err = fileutil.ResolvePathFromConfig("/work/site", "")
	assert.Error(t, err)
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "shot.png")

	require.NoError(t, fileutil.EnsureParentDir(target))

	info, err := os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
