package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    releaseAsset
		wantErr bool
	}{
		{"darwin arm64", "darwin", "arm64", releaseAsset{"mandela_Darwin_all.tar.gz", "mandela"}, false},
		{"linux amd64", "linux", "amd64", releaseAsset{"mandela_Linux_x86_64.tar.gz", "mandela"}, false},
		{"linux 386", "linux", "386", releaseAsset{"mandela_Linux_i386.tar.gz", "mandela"}, false},
		{"windows amd64", "windows", "amd64", releaseAsset{"mandela_Windows_x86_64.zip", "mandela.exe"}, false},
		{"unsupported os", "plan9", "amd64", releaseAsset{}, true},
		{"unsupported arch", "linux", "mips", releaseAsset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecksumFor(t *testing.T) {
	listing := []byte("ABC123  mandela_Darwin_all.tar.gz\nbadline\n\nfoo  bar  baz\ndef456  mandela_Linux_x86_64.tar.gz\n")

	got, ok := checksumFor(listing, "mandela_Darwin_all.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "abc123", got)

	got, ok = checksumFor(listing, "mandela_Linux_x86_64.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "def456", got)

	_, ok = checksumFor(listing, "bar")
	assert.False(t, ok)
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	h := sha256.Sum256(data)

	assert.NoError(t, verifyChecksum(data, hex.EncodeToString(h[:])))
	assert.ErrorIs(t, verifyChecksum(data, "00"), ErrChecksum)
}

func TestUnpack(t *testing.T) {
	content := []byte("#!/bin/sh\necho mandela")

	t.Run("tar.gz", func(t *testing.T) {
		got, err := unpack(buildTarGz(t, "dist/mandela", content), releaseAsset{"x.tar.gz", "mandela"})
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("zip", func(t *testing.T) {
		got, err := unpack(buildZip(t, "mandela.exe", content), releaseAsset{"x.zip", "mandela.exe"})
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := unpack(buildTarGz(t, "README.md", content), releaseAsset{"x.tar.gz", "mandela"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestReplaceExecutable(t *testing.T) {
	target := filepath.Join(t.TempDir(), "mandela")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	require.NoError(t, replaceExecutable([]byte("new-binary"), target))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-binary"), got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(target), ".mandela-update-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/abhisek/mandela/releases/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0","html_url":"https://example.com/v1.2.0"}`))
	}))
	defer server.Close()

	checker := NewChecker(WithBaseURL(server.URL))

	tests := []struct {
		current string
		want    bool
	}{
		{"v1.1.9", true},
		{"1.1.0", true},
		{"v1.2.0", false},
		{"v2.0.0", false},
		{"(devel)", false},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			res, err := checker.Check(context.Background(), &CheckInput{Version: tt.current})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.UpdateAvailable)
			assert.Equal(t, "v1.2.0", res.LatestVersion)
			assert.Equal(t, "https://example.com/v1.2.0", res.ReleaseURL)
		})
	}
}

func TestCheck_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewChecker(WithBaseURL(server.URL)).Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUpdate(t *testing.T) {
	asset, err := assetFor(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		t.Skipf("no release asset for this platform: %v", err)
	}

	binaryContent := []byte("new-mandela-binary")
	var archive []byte
	if asset.zipped() {
		archive = buildZip(t, asset.Binary, binaryContent)
	} else {
		archive = buildTarGz(t, asset.Binary, binaryContent)
	}
	sum := sha256.Sum256(archive)
	archiveHex := hex.EncodeToString(sum[:])

	releaseServer := func(checksum string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/repos/abhisek/mandela/releases/latest":
				_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","html_url":"https://example.com/v2.0.0"}`))
			case "/abhisek/mandela/releases/download/v2.0.0/" + asset.Archive:
				_, _ = w.Write(archive)
			case "/abhisek/mandela/releases/download/v2.0.0/checksums.txt":
				_, _ = fmt.Fprintf(w, "%s  %s\n", checksum, asset.Archive)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	}

	t.Run("happy path", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "mandela")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0755))

		server := releaseServer(archiveHex)
		defer server.Close()

		checker := NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withExecPath(func() (string, error) { return execPath, nil }),
		)

		var stages []string
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)
	})

	t.Run("dev build", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := releaseServer(archiveHex)
		defer server.Close()

		err := NewChecker(WithBaseURL(server.URL)).Update(context.Background(), &UpdateInput{CurrentVersion: "v2.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		server := releaseServer("0000000000000000000000000000000000000000000000000000000000000000")
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("download failure", func(t *testing.T) {
		server := releaseServer(archiveHex)
		defer server.Close()

		checker := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL+"/missing"))
		err := checker.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     name,
		Size:     int64(len(content)),
		Mode:     0755,
		Typeflag: tar.TypeReg,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
