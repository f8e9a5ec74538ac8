package docload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"claims-backend/internal/llm"
	"claims-backend/internal/shared/telemetry"
)

// chunkSize bounds the partition segments, mirroring the ingestion chunking
// used when the text side-cars were first produced.
const chunkSize = 1000

const pageInstruction = "Please extract the details of the image very carefully. " +
	"The details should include the date of the bill, the amount of each item along with the quantity, " +
	"and the total amount in case of bills. If the image is any other document then return all the details in the same format."

// Loader derives plain text from stored documents: structural partitioning
// for text-bearing PDFs, or page rasterization plus per-page vision
// transcription for image-only documents.
type Loader struct {
	LLM       llm.Client
	Runner    Runner
	ImagesDir string
	Pdftoppm  string
	DPI       int
}

// NewLoader constructs a Loader with defaults filled in.
func NewLoader(client llm.Client, runner Runner, imagesDir string) *Loader {
	return &Loader{
		LLM:       client,
		Runner:    runner,
		ImagesDir: imagesDir,
		Pdftoppm:  "pdftoppm",
		DPI:       200,
	}
}

// Partition extracts structured text from a text-bearing PDF, segmenting it
// into chunks of at most chunkSize characters concatenated in order.
func (l *Loader) Partition(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("partition %s: %w", path, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("partition %s: %w", path, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("partition %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("partition %s: %w", path, err)
	}

	chunks := chunkText(buf.String(), chunkSize)
	return strings.Join(chunks, "\n"), nil
}

// LoadScanned rasterizes every page of an image-only document to
// images/<user>/page<N>.png and asks the LLM to transcribe each page,
// concatenating the completions with ascending page markers. The per-user
// image directory is cleared and regenerated on every call.
func (l *Loader) LoadScanned(ctx context.Context, path, user string) (string, error) {
	pages, err := l.rasterize(ctx, path, user)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, page := range pages {
		png, err := os.ReadFile(page)
		if err != nil {
			return "", fmt.Errorf("read page image %s: %w", page, err)
		}
		desc, err := l.LLM.DescribeImage(ctx, pageInstruction, png)
		if err != nil {
			return "", fmt.Errorf("transcribe page %d: %w", i+1, err)
		}
		b.WriteString(fmt.Sprintf("\n Page %d \n", i+1))
		b.WriteString(desc)
	}

	telemetry.Info("docload.scanned", map[string]any{
		"user":  user,
		"path":  path,
		"pages": len(pages),
	})
	return b.String(), nil
}

// rasterize converts the document to one PNG per page under the user's image
// directory and returns the page paths in ascending page order.
func (l *Loader) rasterize(ctx context.Context, path, user string) ([]string, error) {
	pagesDir := filepath.Join(l.ImagesDir, user)
	if err := os.RemoveAll(pagesDir); err != nil {
		return nil, fmt.Errorf("clear image dir: %w", err)
	}
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}

	prefix := filepath.Join(pagesDir, "page")
	_, errb, err := l.Runner.Run(ctx, l.Pdftoppm, "-r", strconv.Itoa(l.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w: %s", path, err, strings.TrimSpace(string(errb)))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	if len(matches) == 0 {
		return nil, fmt.Errorf("rasterize %s: no pages rendered", path)
	}
	sortByPageNumber(matches)

	// Settle on the stable page<N>.png layout regardless of the zero padding
	// pdftoppm chose for this page count.
	out := make([]string, 0, len(matches))
	for i, m := range matches {
		final := filepath.Join(pagesDir, fmt.Sprintf("page%d.png", i+1))
		if err := os.Rename(m, final); err != nil {
			return nil, fmt.Errorf("rename page image: %w", err)
		}
		out = append(out, final)
	}
	return out, nil
}

func sortByPageNumber(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return pageNumber(paths[i]) < pageNumber(paths[j])
	})
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// chunkText splits s into segments of at most max characters, preferring to
// break at the last whitespace inside the window.
func chunkText(s string, max int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var chunks []string
	runes := []rune(s)
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = append(chunks, string(runes))
			break
		}
		cut := max
		for i := max; i > max/2; i-- {
			if runes[i-1] == ' ' || runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	return chunks
}
