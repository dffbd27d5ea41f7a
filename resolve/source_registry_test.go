package resolve

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/software-mansion/scarb/scarbid"
)

// fixtureRegistry serves the index/download endpoints RegistrySource
// expects, in-memory, grounded on the shape of the teacher's
// internal/test/registry fixture server (a handler per path prefix,
// bearer-token gated) adapted to this registry's JSON-index +
// .tar.zst wire format instead of the teacher's tar.gz + headers format.
func fixtureRegistry(t *testing.T, token string, archive []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/versions/pkg_a", func(w http.ResponseWriter, r *http.Request) {
		if token != "" && r.Header.Get("Authorization") != "BEARER "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sum := sha256.Sum256(archive)
		entries := []rawIndexEntry{
			{Version: "1.0.0", Checksum: "sha256:" + hex.EncodeToString(sum[:])},
			{Version: "1.1.0", Checksum: "sha256:" + hex.EncodeToString(sum[:]), Dependencies: []rawIndexDependency{
				{Name: "pkg_b", Req: "^2.0.0"},
			}},
		}
		json.NewEncoder(w).Encode(entries)
	})
	mux.HandleFunc("/api/v1/projects/pkg_a/1.1.0.tar.zst", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})
	return httptest.NewServer(mux)
}

func buildZstdArchive(t *testing.T) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	content := []byte("fn main() {}")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "src/lib.cairo", Mode: 0o644, Size: int64(len(content))}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	var zstdBuf bytes.Buffer
	zw, err := zstd.NewWriter(&zstdBuf)
	require.NoError(t, err)
	_, err = zw.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return zstdBuf.Bytes()
}

func TestRegistrySourceQuery(t *testing.T) {
	archive := buildZstdArchive(t)
	srv := fixtureRegistry(t, "tok123", archive)
	defer srv.Close()

	src, err := NewRegistrySource(srv.URL, "tok123", t.TempDir(), 5*time.Second)
	require.NoError(t, err)

	name, err := scarbid.NewPackageName("pkg_a")
	require.NoError(t, err)

	summaries, err := src.Query(context.Background(), name)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "1.0.0", summaries[0].ID.Version.String())
	require.Equal(t, "1.1.0", summaries[1].ID.Version.String())
	require.Len(t, summaries[1].Dependencies, 1)
	require.Equal(t, "pkg_b", summaries[1].Dependencies[0].Name.String())
}

func TestRegistrySourceQueryRejectsBadToken(t *testing.T) {
	archive := buildZstdArchive(t)
	srv := fixtureRegistry(t, "tok123", archive)
	defer srv.Close()

	src, err := NewRegistrySource(srv.URL, "wrong", t.TempDir(), 5*time.Second)
	require.NoError(t, err)

	name, err := scarbid.NewPackageName("pkg_a")
	require.NoError(t, err)

	_, err = src.Query(context.Background(), name)
	require.Error(t, err)
}

func TestRegistrySourceDownload(t *testing.T) {
	archive := buildZstdArchive(t)
	srv := fixtureRegistry(t, "tok123", archive)
	defer srv.Close()

	src, err := NewRegistrySource(srv.URL, "tok123", t.TempDir(), 5*time.Second)
	require.NoError(t, err)

	name, err := scarbid.NewPackageName("pkg_a")
	require.NoError(t, err)
	version, err := scarbid.NewVersion("1.1.0")
	require.NoError(t, err)

	path, err := src.Download(context.Background(), scarbid.PackageId{Name: name, Version: version, Source: src.SourceId()})
	require.NoError(t, err)
	require.DirExists(t, path.Dir)
}
