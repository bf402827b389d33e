// Package categorize assigns ledger categories to draft split lines using a
// cache-first strategy: the local description-to-category cache is consulted
// before the classifier, and fresh classifications are written back to it.
package categorize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

// maxConcurrentClassifications bounds outstanding classifier calls.
const maxConcurrentClassifications = 10

// Normalize produces the cache key for a memo: lowercased and trimmed.
func Normalize(memo string) string {
	return strings.ToLower(strings.TrimSpace(memo))
}

// Categorizer fills in category fields on draft split lines. It never touches
// line amounts.
type Categorizer struct {
	store               storage.Store
	classifier          Classifier
	categories          []models.Category
	confidenceThreshold float64
}

// New creates a Categorizer over the given category set. Lines classified
// below confidenceThreshold are flagged for review.
func New(store storage.Store, classifier Classifier, categories []models.Category, confidenceThreshold float64) *Categorizer {
	return &Categorizer{
		store:               store,
		classifier:          classifier,
		categories:          categories,
		confidenceThreshold: confidenceThreshold,
	}
}

// CategorizeAll categorizes every split line in place. Cached memos are
// resolved first; the rest are classified concurrently (bounded pool), each
// failure marking only its own line for review. Returns the number of lines
// flagged for review.
func (c *Categorizer) CategorizeAll(ctx context.Context, lines []models.SplitLine) int {
	var pending []int
	for i := range lines {
		cached, err := c.store.GetCategoryMapping(ctx, Normalize(lines[i].Memo))
		switch {
		case err == nil:
			slog.Debug("Category cache hit", "memo", lines[i].Memo, "category_id", cached.CategoryID)
			c.apply(&lines[i], cached.CategoryID, cached.Confidence)
		case errors.Is(err, storage.ErrNotFound):
			pending = append(pending, i)
		default:
			slog.Warn("Category cache lookup failed", "memo", lines[i].Memo, "error", err)
			pending = append(pending, i)
		}
	}

	if len(pending) > 0 {
		c.classifyPending(ctx, lines, pending)
	}

	review := 0
	for i := range lines {
		if lines[i].NeedsReview {
			review++
		}
	}
	return review
}

type classifyResult struct {
	idx    int
	result *Classification
	err    error
}

// classifyPending classifies uncached lines with at most
// maxConcurrentClassifications outstanding calls. Results only touch their
// own line, so completion order does not matter; cache writes happen after
// all workers finish to keep the store access single-threaded.
func (c *Categorizer) classifyPending(ctx context.Context, lines []models.SplitLine, pending []int) {
	sem := make(chan struct{}, maxConcurrentClassifications)
	results := make(chan classifyResult, len(pending))

	var wg sync.WaitGroup
	for _, idx := range pending {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := c.classifier.Classify(ctx, lines[i].Memo, c.categories)
			results <- classifyResult{idx: i, result: result, err: err}
		}(idx)
	}
	wg.Wait()
	close(results)

	for r := range results {
		line := &lines[r.idx]
		if r.err != nil {
			slog.Warn("Classification failed, flagging line for review",
				"memo", line.Memo, "error", r.err)
			line.NeedsReview = true
			continue
		}

		confidence := r.result.Confidence
		c.apply(line, r.result.CategoryID, &confidence)

		mapping := &models.CategoryMapping{
			Pattern:    Normalize(line.Memo),
			CategoryID: r.result.CategoryID,
			Source:     "ai",
			Confidence: &confidence,
			Rationale:  r.result.Rationale,
		}
		if err := c.store.SaveCategoryMapping(ctx, mapping); err != nil {
			slog.Warn("Failed to cache category mapping", "pattern", mapping.Pattern, "error", err)
		}
	}
}

// apply sets category fields on a line and flags low-confidence results.
func (c *Categorizer) apply(line *models.SplitLine, categoryID string, confidence *float64) {
	line.CategoryID = categoryID
	line.CategoryName = c.categoryName(categoryID)
	line.Confidence = confidence

	if confidence != nil && *confidence < c.confidenceThreshold {
		line.NeedsReview = true
		slog.Warn("Low confidence categorization, flagged for review",
			"memo", line.Memo, "confidence", fmt.Sprintf("%.2f", *confidence))
	}
}

func (c *Categorizer) categoryName(categoryID string) string {
	for i := range c.categories {
		if c.categories[i].ID == categoryID {
			return fmt.Sprintf("%s > %s", c.categories[i].GroupName, c.categories[i].Name)
		}
	}
	return ""
}
