package export

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"owcs-analyzer/internal/report"
)

var ErrChecksumMismatch = errors.New("data.json does not match manifest checksum")

// File names inside the output directory
const (
	DataFile     = "data.json"
	ManifestFile = "manifest.json"
)

// Manifest describes one data.json export
type Manifest struct {
	RunID       string `json:"runId"`
	Source      string `json:"source"`
	GeneratedAt string `json:"generatedAt"`
	DataSha256  string `json:"dataSha256"`
	Rows        int    `json:"rows"`
	Maps        int    `json:"maps"`
}

// WriteJSON exports a report to data.json and manifest.json in dir
func WriteJSON(dir string, rep *report.Report) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	dataPath := filepath.Join(dir, DataFile)
	dataFile, err := os.Create(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", DataFile, err)
	}
	defer dataFile.Close()

	// Write to file and compute SHA256 simultaneously
	hasher := sha256.New()
	if err := writeIndented(io.MultiWriter(dataFile, hasher), rep); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", DataFile, err)
	}

	manifest := &Manifest{
		RunID:       rep.RunID,
		Source:      rep.Source,
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
		DataSha256:  hex.EncodeToString(hasher.Sum(nil)),
		Rows:        rep.Rows,
		Maps:        rep.Maps,
	}

	manifestFile, err := os.Create(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", ManifestFile, err)
	}
	defer manifestFile.Close()

	if err := writeIndented(manifestFile, manifest); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ManifestFile, err)
	}
	return manifest, nil
}

// ReadManifest loads the manifest from an output directory
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// Verify checks data.json against the checksum recorded in the manifest
func Verify(dir string) (*Manifest, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, DataFile))
	if err != nil {
		return m, err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return m, fmt.Errorf("failed to read %s: %w", DataFile, err)
	}

	actual := hex.EncodeToString(hasher.Sum(nil))
	if actual != m.DataSha256 {
		return m, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, m.DataSha256, actual)
	}
	return m, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
