package resolve

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/software-mansion/scarb/scarbid"
)

// rawIndexEntry is the JSON shape returned by a registry's version index
// endpoint, named the way the teacher's internal/test/registry fixture
// server names its rawVersions/rawPublished wire types.
type rawIndexEntry struct {
	Version      string               `json:"version"`
	Checksum     string               `json:"checksum"`
	Yanked       bool                 `json:"yanked"`
	Dependencies []rawIndexDependency `json:"dependencies"`
}

type rawIndexDependency struct {
	Name     string `json:"name"`
	Req      string `json:"req"`
	Dev      bool   `json:"dev"`
	Registry string `json:"registry,omitempty"`
}

// RegistrySource talks to a Scarb package registry's HTTP index and
// .tar.zst download endpoints (§4.C, §4.D). Grounded on the teacher's
// remote.go for the bearer-token-authenticated HTTP request shape, and on
// internal/test/registry/registry.go for the JSON index wire format this
// implementation's tests target.
type RegistrySource struct {
	id        scarbid.SourceId
	baseURL   string
	authToken string
	client    *http.Client
	cacheDir  string
}

// NewRegistrySource builds a RegistrySource against baseURL, downloading
// into cacheDir (§6.5's registry/ cache root).
func NewRegistrySource(baseURL, authToken, cacheDir string, timeout time.Duration) (*RegistrySource, error) {
	id, err := scarbid.NewRegistrySourceId(baseURL)
	if err != nil {
		return nil, err
	}
	return &RegistrySource{
		id:        id,
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
		cacheDir:  cacheDir,
	}, nil
}

func (s *RegistrySource) Name() string               { return "registry+" + s.baseURL }
func (s *RegistrySource) SourceId() scarbid.SourceId { return s.id }

func (s *RegistrySource) doGet(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "BEARER "+s.authToken)
	}
	resp, err := s.client.Do(req)
	if te, ok := err.(interface{ Timeout() bool }); ok && te.Timeout() {
		// Idempotent GET: retried exactly once on timeout.
		resp, err = s.client.Do(req)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s", url)
	}
	return resp, nil
}

// Query fetches the version index for name from
// <baseURL>/api/v1/versions/<name>.
func (s *RegistrySource) Query(ctx context.Context, name scarbid.PackageName) ([]Summary, error) {
	url := fmt.Sprintf("%s/api/v1/versions/%s", s.baseURL, name.String())
	resp, err := s.doGet(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("registry %s: unexpected status %d for %s", s.baseURL, resp.StatusCode, name)
	}

	var entries []rawIndexEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrapf(err, "decoding index for %s", name)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, e := range entries {
		v, err := scarbid.NewVersion(e.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "bad version %q in index for %s", e.Version, name)
		}
		var checksum scarbid.Checksum
		if e.Checksum != "" {
			checksum, err = scarbid.ParseChecksum(e.Checksum)
			if err != nil {
				return nil, errors.Wrapf(err, "bad checksum for %s %s", name, e.Version)
			}
		}
		deps := make([]Requirement, 0, len(e.Dependencies))
		for _, d := range e.Dependencies {
			req, err := scarbid.NewVersionReq(d.Req)
			if err != nil {
				return nil, err
			}
			sid := s.id
			if d.Registry != "" {
				var sidErr error
				sid, sidErr = scarbid.NewRegistrySourceId(d.Registry)
				if sidErr != nil {
					return nil, sidErr
				}
			}
			depName, err := scarbid.NewPackageName(d.Name)
			if err != nil {
				return nil, err
			}
			deps = append(deps, Requirement{
				Name:            depName,
				VersionReq:      req,
				Source:          sid,
				Dev:             d.Dev,
				DefaultFeatures: true,
			})
		}
		summaries = append(summaries, Summary{
			ID:           scarbid.PackageId{Name: name, Version: v, Source: s.id},
			Dependencies: deps,
			Yanked:       e.Yanked,
			Checksum:     checksum,
		})
	}
	return summaries, nil
}

// Download fetches <baseURL>/api/v1/projects/<name>/<version>.tar.zst and
// extracts it under cacheDir. It returns the sha256 of the bytes the
// decompressor read in PackagePath.Checksum; it does not compare that
// hash with the checksum Query reported, and a tree already present in
// the cache is returned without a checksum.
func (s *RegistrySource) Download(ctx context.Context, id scarbid.PackageId) (PackagePath, error) {
	dest := filepath.Join(s.cacheDir, "src", id.Name.String()+"-"+id.Version.String())
	if _, err := os.Stat(dest); err == nil {
		return PackagePath{Dir: dest}, nil
	}

	url := fmt.Sprintf("%s/api/v1/projects/%s/%s.tar.zst", s.baseURL, id.Name, id.Version)
	resp, err := s.doGet(ctx, url)
	if err != nil {
		return PackagePath{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return PackagePath{}, errors.Errorf("registry %s: download of %s returned %d", s.baseURL, id, resp.StatusCode)
	}

	tmp, err := os.MkdirTemp(s.cacheDir, "download-*")
	if err != nil {
		return PackagePath{}, err
	}
	defer os.RemoveAll(tmp)

	hasher := sha256.New()
	tee := io.TeeReader(resp.Body, hasher)

	zr, err := zstd.NewReader(tee)
	if err != nil {
		return PackagePath{}, err
	}
	defer zr.Close()

	if err := extractTar(zr, tmp); err != nil {
		return PackagePath{}, err
	}

	hashed := scarbid.Checksum{Algorithm: "sha256", Digest: hex.EncodeToString(hasher.Sum(nil))}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return PackagePath{}, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return PackagePath{}, err
	}
	return PackagePath{Dir: dest, Checksum: hashed}, nil
}

func extractTar(r io.Reader, destDir string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}
	}
}

// IsYanked re-queries the index and reports the entry's yanked flag (§7
// KindYankedVersion is a warning, not necessarily fatal, when pinned by a
// lockfile -- the resolver decides fatality, this method only reports fact).
func (s *RegistrySource) IsYanked(ctx context.Context, id scarbid.PackageId) (bool, error) {
	summaries, err := s.Query(ctx, id.Name)
	if err != nil {
		return false, err
	}
	for _, sum := range summaries {
		if sum.ID.Equal(id) {
			return sum.Yanked, nil
		}
	}
	return false, nil
}
