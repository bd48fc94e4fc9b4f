package export

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIdeaName(t *testing.T) {
	cases := map[string]string{
		"My Cool Idea! #1":  "my-cool-idea-1",
		"  spaced   out  ":  "spaced-out",
		"already-slugged":   "already-slugged",
		"MiXeD CaSe":        "mixed-case",
		"!!!":               "",
		"Ünïcode Stripped!": "ncode-stripped",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeIdeaName(in), "input %q", in)
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestPackZip(t *testing.T) {
	p := Packager{Now: fixedClock}
	files := []File{
		{Path: "steering/product.md", Content: "product"},
		{Path: "README.md", Content: "readme"},
	}

	pkg, err := p.Pack(files, "My Cool Idea! #1", FormatZip)
	require.NoError(t, err)

	assert.Equal(t, "kiro-setup-my-cool-idea-1-20250314-092653.zip", pkg.Filename)
	assert.Equal(t, 2, pkg.FileCount)
	assert.Empty(t, pkg.Files)

	r, err := zip.NewReader(bytes.NewReader(pkg.Zip), int64(len(pkg.Zip)))
	require.NoError(t, err)
	require.Len(t, r.File, 2)

	got := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		got[f.Name] = string(data)
	}
	assert.Equal(t, "product", got["kiro-setup/steering/product.md"])
	assert.Equal(t, "readme", got["kiro-setup/README.md"])
}

func TestPackIndividual(t *testing.T) {
	p := Packager{Now: fixedClock}
	pkg, err := p.Pack([]File{{Path: "docs/PRD.md", Content: "prd"}}, "Idea", FormatIndividual)
	require.NoError(t, err)

	assert.Equal(t, "kiro-setup-idea-20250314-092653", pkg.Filename)
	assert.Nil(t, pkg.Zip)
	require.Len(t, pkg.Files, 1)
	assert.Equal(t, "kiro-setup/docs/PRD.md", pkg.Files[0].Path)
	assert.Equal(t, "prd", pkg.Files[0].Content)
}

func TestPackUnknownFormat(t *testing.T) {
	_, err := Packager{}.Pack(nil, "Idea", "tarball")
	assert.Error(t, err)
}
