package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campuslife/campus-engine/pkg/crawl"
	"github.com/campuslife/campus-engine/pkg/models"
	"github.com/campuslife/campus-engine/pkg/repositories"
	"github.com/campuslife/campus-engine/pkg/textutil"
)

const faqTitleLimit = 100

// PageCrawler runs a crawl from a seed URL and returns the page records.
type PageCrawler interface {
	Run(ctx context.Context, seed string) (*crawl.Result, error)
}

// IngestReport summarises one crawl-and-write run.
type IngestReport struct {
	PagesCrawled     int           `json:"pages_crawled"`
	PagesFailed      int           `json:"pages_failed"`
	EntriesWritten   int           `json:"entries_written"`
	EntriesSkipped   int           `json:"entries_skipped"`
	IncludesChunks   int           `json:"chunk_entries"`
	IncludesFAQs     int           `json:"faq_entries"`
	IncludesTables   int           `json:"table_entries"`
	IncludesContacts int           `json:"contact_entries"`
	Elapsed          time.Duration `json:"-"`
	ElapsedSeconds   float64       `json:"elapsed_seconds"`
}

// IngestService crawls the campus website and repopulates the knowledge
// base from the extracted pages.
type IngestService interface {
	// Run performs a full crawl and replaces the knowledge base with the
	// entries derived from it.
	Run(ctx context.Context) (*IngestReport, error)
}

type ingestService struct {
	crawler   PageCrawler
	knowledge repositories.KnowledgeRepository
	seedURL   string
	chunkSize int
	logger    *zap.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(crawler PageCrawler, knowledge repositories.KnowledgeRepository, seedURL string, chunkSize int, logger *zap.Logger) IngestService {
	if chunkSize <= 0 {
		chunkSize = crawl.DefaultChunkSize
	}
	return &ingestService{
		crawler:   crawler,
		knowledge: knowledge,
		seedURL:   seedURL,
		chunkSize: chunkSize,
		logger:    logger.Named("ingest"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) Run(ctx context.Context) (*IngestReport, error) {
	start := time.Now()
	s.logger.Info("Starting knowledge ingest", zap.String("seed", s.seedURL))

	result, err := s.crawler.Run(ctx, s.seedURL)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	report := &IngestReport{
		PagesCrawled: result.Success,
		PagesFailed:  result.Errors,
	}

	var entries []*models.KnowledgeEntry
	for _, record := range result.Records {
		entries = append(entries, s.entriesForRecord(record, report)...)
	}

	// A run replaces the knowledge base wholesale. Entries the database
	// rejects are dropped individually; a failed run keeps the previous
	// snapshot.
	written, skipped, err := s.knowledge.ReplaceAll(ctx, entries)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn("Some entries were rejected during ingest", zap.Int("skipped", skipped))
	}

	report.EntriesWritten = written
	report.EntriesSkipped = skipped
	report.Elapsed = time.Since(start)
	report.ElapsedSeconds = report.Elapsed.Seconds()

	s.logger.Info("Knowledge ingest complete",
		zap.Int("pages_crawled", report.PagesCrawled),
		zap.Int("pages_failed", report.PagesFailed),
		zap.Int("entries_written", report.EntriesWritten),
		zap.Int("entries_skipped", report.EntriesSkipped),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (s *ingestService) entriesForRecord(record crawl.Record, report *IngestReport) []*models.KnowledgeEntry {
	page := record.Page
	if page == nil {
		return nil
	}

	var entries []*models.KnowledgeEntry

	body := page.Content
	if body == "" {
		body = page.Description
	}
	chunks := crawl.SplitChunks(body, s.chunkSize)
	for i, chunk := range chunks {
		title := crawl.ChunkTitle(page.Title, i, len(chunks))
		entries = append(entries, &models.KnowledgeEntry{
			Category:  DeriveCategory(page.Title, chunk),
			Title:     title,
			Content:   chunk,
			SourceURL: record.URL,
			Keywords:  strings.Join(crawl.ExtractKeywords(chunk), ","),
		})
		report.IncludesChunks++
	}

	for _, contact := range page.Contacts {
		entries = append(entries, &models.KnowledgeEntry{
			Category:  "contacts",
			Title:     "Contact: " + contact.Value,
			Content:   contactContent(contact),
			SourceURL: record.URL,
			Keywords:  contact.Value,
		})
		report.IncludesContacts++
	}

	for _, faq := range page.FAQs {
		if faq.Question == "" || faq.Answer == "" {
			continue
		}
		entries = append(entries, &models.KnowledgeEntry{
			Category:  "faq",
			Title:     textutil.Truncate(faq.Question, faqTitleLimit),
			Content:   fmt.Sprintf("Q: %s\n\nA: %s", faq.Question, faq.Answer),
			SourceURL: record.URL,
			Keywords:  strings.Join(crawl.ExtractKeywords(faq.Question+" "+faq.Answer), ","),
		})
		report.IncludesFAQs++
	}

	for i, table := range page.Tables {
		content := tableContent(table)
		if content == "" {
			continue
		}
		entries = append(entries, &models.KnowledgeEntry{
			Category:  "structured_data",
			Title:     fmt.Sprintf("%s (Table %d)", page.Title, i+1),
			Content:   content,
			SourceURL: record.URL,
			Keywords:  strings.Join(crawl.ExtractKeywords(content), ","),
		})
		report.IncludesTables++
	}

	return entries
}

func contactContent(contact models.Contact) string {
	content := fmt.Sprintf("%s: %s", strings.ToUpper(string(contact.Type)), contact.Value)
	if contact.Context != "" {
		content += "\nContext: " + contact.Context
	}
	return content
}

func tableContent(table [][]string) string {
	var lines []string
	for _, row := range table {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}
