// Package ingest turns uploaded files into stored documents: raw blob,
// extracted text, sentence chunks, subject label and keywords.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/analysis"
	"github.com/dmitrijs2005/studyvault/internal/server/extract"
	"github.com/dmitrijs2005/studyvault/internal/server/models"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/blobs"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/records"
	"github.com/google/uuid"
)

// Upload is one file handed to the pipeline.
type Upload struct {
	Data     []byte
	Filename string
	Size     int64
}

// Result is the outcome for one file of a batch.
type Result struct {
	Filename string
	Document *models.Document
	Err      error
}

// Pipeline ingests uploads for an owner.
type Pipeline struct {
	store      *records.Store
	blobs      blobs.Store
	extractor  extract.Extractor
	classifier analysis.Classifier
	chunker    *analysis.Chunker
	logger     logging.Logger

	timeout      time.Duration
	keywordLimit int
	now          func() time.Time
	newID        func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithClassifier(c analysis.Classifier) Option {
	return func(p *Pipeline) { p.classifier = c }
}

func WithChunkSize(size int) Option {
	return func(p *Pipeline) { p.chunker = analysis.NewChunker(size) }
}

func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(store *records.Store, blobStore blobs.Store, extractor extract.Extractor, logger logging.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:        store,
		blobs:        blobStore,
		extractor:    extractor,
		classifier:   analysis.NewKeywordClassifier(),
		chunker:      analysis.NewChunker(analysis.DefaultChunkSize),
		logger:       logger,
		timeout:      extract.DefaultTimeout,
		keywordLimit: analysis.DefaultKeywordLimit,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type blobRef struct {
	area, key string
}

func textKey(id string) string {
	return id + ".txt"
}

// Ingest stores and analyses one upload. On any failure the blobs written
// so far are removed and the documents record is left untouched.
func (p *Pipeline) Ingest(ctx context.Context, owner string, up Upload) (*models.Document, error) {
	if err := records.ValidateOwner(owner); err != nil {
		return nil, fmt.Errorf("%w: owner %q", common.ErrInvalidInput, owner)
	}
	ext, ok := extract.Extension(up.Filename)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, up.Filename)
	}
	if len(up.Data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", common.ErrInvalidInput)
	}

	id := p.newID()
	stored := id + ext
	log := p.logger.With("owner", owner, "document", id, "filename", up.Filename)

	if err := p.blobs.Put(ctx, blobs.AreaDocuments, owner, stored, up.Data); err != nil {
		log.Error(ctx, "store upload failed", "error", err)
		return nil, fmt.Errorf("%w: store upload: %v", common.ErrStorageFailure, err)
	}
	cleanup := func(refs ...blobRef) {
		for _, r := range refs {
			if err := p.blobs.Delete(ctx, r.area, owner, r.key); err != nil {
				log.Warn(ctx, "cleanup failed", "area", r.area, "key", r.key, "error", err)
			}
		}
	}
	rawKey := blobRef{blobs.AreaDocuments, stored}
	txtKey := blobRef{blobs.AreaExtractedText, textKey(id)}

	ex, err := extract.WithTimeout(ctx, p.timeout, p.extractor, up.Data, up.Filename)
	if err != nil {
		log.Warn(ctx, "extraction failed", "error", err)
		cleanup(rawKey)
		return nil, err
	}
	text := strings.TrimSpace(ex.Text)
	if text == "" {
		cleanup(rawKey)
		return nil, fmt.Errorf("%w: no text found", common.ErrExtractionFailed)
	}

	if err := p.blobs.Put(ctx, blobs.AreaExtractedText, owner, textKey(id), []byte(text)); err != nil {
		log.Error(ctx, "store text failed", "error", err)
		cleanup(rawKey)
		return nil, fmt.Errorf("%w: store text: %v", common.ErrStorageFailure, err)
	}

	size := up.Size
	if size <= 0 {
		size = int64(len(up.Data))
	}
	doc := &models.Document{
		ID:           id,
		OriginalName: up.Filename,
		Filename:     stored,
		UploadedAt:   p.now().UTC(),
		Size:         size,
		Pages:        ex.Pages,
		Subject:      p.classifier.Classify(text),
		Keywords:     analysis.ExtractKeywords(text, p.keywordLimit),
		Chunks:       p.chunker.Split(text),
		TextLength:   utf8.RuneCountInString(text),
	}

	_, err = records.Update(ctx, p.store, owner, models.RecordDocuments, models.NewDocumentSet,
		func(set *models.DocumentSet) error {
			set.Documents[doc.ID] = doc
			return nil
		})
	if err != nil {
		log.Error(ctx, "save document failed", "error", err)
		cleanup(rawKey, txtKey)
		return nil, err
	}

	log.Info(ctx, "document ingested", "subject", doc.Subject, "chunks", len(doc.Chunks), "pages", doc.Pages)
	return doc, nil
}

// IngestBatch ingests each upload independently; one failure does not
// affect the others. Results are in input order.
func (p *Pipeline) IngestBatch(ctx context.Context, owner string, uploads []Upload) []Result {
	out := make([]Result, len(uploads))
	for i, up := range uploads {
		doc, err := p.Ingest(ctx, owner, up)
		out[i] = Result{Filename: up.Filename, Document: doc, Err: err}
	}
	return out
}

// ListDocuments returns the owner's documents ordered by upload time.
func (p *Pipeline) ListDocuments(ctx context.Context, owner string) ([]*models.Document, error) {
	set, err := records.Get(ctx, p.store, owner, models.RecordDocuments, models.NewDocumentSet)
	if err != nil {
		return nil, err
	}
	return set.Sorted(), nil
}

// GetDocument returns one document or common.ErrNotFound.
func (p *Pipeline) GetDocument(ctx context.Context, owner, id string) (*models.Document, error) {
	set, err := records.Get(ctx, p.store, owner, models.RecordDocuments, models.NewDocumentSet)
	if err != nil {
		return nil, err
	}
	doc, ok := set.Documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %s", common.ErrNotFound, id)
	}
	return doc, nil
}

// Text returns the extracted text stored for a document.
func (p *Pipeline) Text(ctx context.Context, owner, id string) (string, error) {
	if _, err := p.GetDocument(ctx, owner, id); err != nil {
		return "", err
	}
	b, err := p.blobs.Get(ctx, blobs.AreaExtractedText, owner, textKey(id))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DeleteDocument removes the document entry and then both blobs. Blob
// removal failures are logged; the document is gone either way.
func (p *Pipeline) DeleteDocument(ctx context.Context, owner, id string) error {
	var removed *models.Document
	_, err := records.Update(ctx, p.store, owner, models.RecordDocuments, models.NewDocumentSet,
		func(set *models.DocumentSet) error {
			doc, ok := set.Documents[id]
			if !ok {
				return fmt.Errorf("%w: document %s", common.ErrNotFound, id)
			}
			removed = doc
			delete(set.Documents, id)
			return nil
		})
	if err != nil {
		return err
	}

	var errs []error
	if err := p.blobs.Delete(ctx, blobs.AreaDocuments, owner, removed.Filename); err != nil {
		errs = append(errs, err)
	}
	if err := p.blobs.Delete(ctx, blobs.AreaExtractedText, owner, textKey(id)); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Warn(ctx, "document blobs not removed", "owner", owner, "document", id, "error", err)
	}
	return nil
}
