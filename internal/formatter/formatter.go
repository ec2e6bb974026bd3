// Package formatter exports recommendation batches to CSV, Markdown, plain text and JSON.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songrec/internal/recommend"
	"github.com/desertthunder/songrec/internal/services"
	"github.com/desertthunder/songrec/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// FormatFromPath picks the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported export extension %q", shared.ErrInvalidArgument, ext)
	}
}

// ExportToCSV writes one row per track with columns Position, Track, URI.
//
// The URI column is blank for tracks without a catalog match.
func ExportToCSV(result *recommend.Result) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Track", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range result.Items {
		record := []string{strconv.Itoa(i + 1), item.Display, item.URI}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the batch as a Markdown document.
func ExportToMarkdown(result *recommend.Result) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", result.PlaylistName)
	fmt.Fprintf(&buf, "**Engine**: %s\n", result.Engine)
	if result.Seed != "" {
		fmt.Fprintf(&buf, "**Seed**: %s\n", result.Seed)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(result.Tracks))
	fmt.Fprintf(&buf, "**Catalog matches**: %d\n\n", len(result.URIs))

	buf.WriteString("## Tracks\n\n")
	for i, track := range result.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, track)
	}

	if len(result.URIs) > 0 {
		buf.WriteString("\n## Catalog URIs\n\n")
		for _, uri := range result.URIs {
			fmt.Fprintf(&buf, "- `%s`\n", uri)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the batch as a numbered plain text list.
func ExportToText(result *recommend.Result) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", result.PlaylistName)
	fmt.Fprintf(&buf, "Engine: %s\n", result.Engine)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(result.Tracks))

	for i, track := range result.Tracks {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, track)
	}

	return buf.Bytes(), nil
}

// exportDoc is the JSON shape of an exported batch.
type exportDoc struct {
	Engine       string                     `json:"engine"`
	Seed         string                     `json:"seed,omitempty"`
	PlaylistName string                     `json:"playlist_name"`
	Items        []recommend.Recommendation `json:"items"`
	Tracks       []string                   `json:"tracks"`
	URIs         []string                   `json:"uris"`
	ExportedAt   time.Time                  `json:"exported_at"`
}

// ExportToJSON renders the batch as indented JSON.
func ExportToJSON(result *recommend.Result) ([]byte, error) {
	items := result.Items
	if items == nil {
		items = []recommend.Recommendation{}
	}
	doc := exportDoc{
		Engine:       result.Engine,
		Seed:         result.Seed,
		PlaylistName: result.PlaylistName,
		Items:        items,
		Tracks:       nonNil(result.Tracks),
		URIs:         nonNil(result.URIs),
		ExportedAt:   time.Now().UTC(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// Export renders result in format.
func Export(result *recommend.Result, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(result)
	case FormatMarkdown:
		return ExportToMarkdown(result)
	case FormatText:
		return ExportToText(result)
	case FormatJSON:
		return ExportToJSON(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes result to path in the format implied by its extension.
func WriteExport(result *recommend.Result, path string) error {
	if result == nil {
		return fmt.Errorf("%w: nothing to export", shared.ErrInvalidInput)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Export(result, format)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteAlbumCover downloads the album's cover image to path.
func WriteAlbumCover(album services.Album, path string) error {
	if album.ImageURL == "" {
		return fmt.Errorf("%w: album %q has no cover image", shared.ErrInvalidInput, album.Name)
	}

	data, err := DownloadImage(album.ImageURL)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save cover image: %w", err)
	}
	return nil
}
