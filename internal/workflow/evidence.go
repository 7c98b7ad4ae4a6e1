package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/agrocheck/internal/documents"
	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/internal/validation"
)

var imageTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// IsImage reports whether key names an image by its extension.
func IsImage(key string) bool {
	_, ok := imageTypes[extension(key)]
	return ok
}

// MIMEType returns the payload type attached for key. Images map by
// extension; everything else is sent as a document, PDF unless the
// extension says otherwise.
func MIMEType(key string) string {
	ext := extension(key)
	if t, ok := imageTypes[ext]; ok {
		return t
	}
	if ext != "" && ext != "pdf" {
		if t := mime.TypeByExtension("." + ext); t != "" {
			return strings.TrimSpace(strings.SplitN(t, ";", 2)[0])
		}
	}
	return "application/pdf"
}

func extension(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}

// File is one stored file fetched for the model.
type File struct {
	Path     string `json:"path"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
	// Text is the embedded PDF text, empty when none could be read.
	Text string `json:"-"`
}

// Evidence is the set of files that reached the model for one document type.
type Evidence struct {
	DocType validation.DocType `json:"doc_type"`
	Files   []File             `json:"files"`
}

// Present reports whether any file survived assembly.
func (e Evidence) Present() bool {
	return len(e.Files) > 0
}

// Text joins the embedded text of every file, tagged by path and truncated
// to limit characters.
func (e Evidence) Text(limit int) string {
	var sb strings.Builder
	for _, f := range e.Files {
		if f.Text == "" {
			continue
		}
		fmt.Fprintf(&sb, "\n[%s]\n%s\n", f.Path, f.Text)
	}
	return truncate(sb.String(), limit)
}

type fetchJob struct {
	slot int
	key  string
}

// AssembleDocuments selects the newest files per required type, fetches
// each through a signed URL, and returns one Evidence per requirement in
// requirement order. A file that cannot be signed or fetched is left out.
// Only context cancellation fails the call.
func (rt *Runtime) AssembleDocuments(
	ctx context.Context,
	reqs []validation.Requirement,
	docs map[validation.DocType][]documents.Document,
) ([]Evidence, error) {
	evidence := make([]Evidence, len(reqs))
	var jobs []fetchJob
	slots := make([]int, 0)

	for i, req := range reqs {
		evidence[i].DocType = req.DocType
		selected := docs[req.DocType]
		if n := rt.Config.MaxFilesPerType; n > 0 && len(selected) > n {
			selected = selected[:n]
		}
		for _, d := range selected {
			jobs = append(jobs, fetchJob{slot: len(jobs), key: d.FilePath})
			slots = append(slots, i)
		}
	}

	files, err := rt.fetchAll(ctx, jobs, rt.Config.DocumentURLTTLDuration(), true)
	if err != nil {
		return nil, err
	}

	for j, f := range files {
		if f == nil {
			continue
		}
		i := slots[j]
		evidence[i].Files = append(evidence[i].Files, *f)
	}

	for _, e := range evidence {
		rt.Logger.InfoContext(ctx, "evidence assembled",
			"doc_type", e.DocType,
			"files", len(e.Files),
		)
	}

	return evidence, nil
}

// AssemblePhotos fetches the given photos in order. Photos that cannot be
// signed or fetched are left out.
func (rt *Runtime) AssemblePhotos(ctx context.Context, items []photos.Photo) ([]File, error) {
	jobs := make([]fetchJob, len(items))
	for i, p := range items {
		jobs[i] = fetchJob{slot: i, key: p.FilePath}
	}

	fetched, err := rt.fetchAll(ctx, jobs, rt.Config.PhotoURLTTLDuration(), false)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(fetched))
	for _, f := range fetched {
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

// fetchAll runs the fetches with bounded concurrency. Results keep job
// order; a nil entry marks a file that was left out.
func (rt *Runtime) fetchAll(ctx context.Context, jobs []fetchJob, ttl time.Duration, withText bool) ([]*File, error) {
	results := make([]*File, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(rt.Config.Concurrency, 1))

	for _, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			f, err := rt.fetch(gctx, job.key, ttl)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				rt.Logger.WarnContext(gctx, "evidence file skipped", "key", job.key, "error", err)
				return nil
			}

			if withText && f.MIMEType == "application/pdf" {
				f.Text = truncate(pdfText(f.Data), rt.Config.MaxTextChars)
			}

			results[job.slot] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble evidence: %w", err)
	}
	return results, nil
}

func (rt *Runtime) fetch(ctx context.Context, key string, ttl time.Duration) (*File, error) {
	signed, err := rt.Storage.SignedURL(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := rt.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}

	limit := rt.Config.MaxFetchBytes()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("download: file exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download: empty file")
	}

	return &File{Path: key, MIMEType: MIMEType(key), Data: data}, nil
}

// pdfText returns the embedded text of a PDF, or "" when it cannot be read.
func pdfText(data []byte) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return ""
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
