// Package transform turns a job's stored raw results into normalized
// posts and comments. The step is idempotent: posts upsert on their
// natural key and comments that already exist are skipped, so running
// it again after a normalizer fix updates rows instead of duplicating
// them.
package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"sociograph/internal/extract"
	"sociograph/internal/metrics"
	"sociograph/internal/model"
	"sociograph/internal/normalize"
	"sociograph/internal/store"
)

// ContentStore is the slice of the persistence layer the transformer
// writes through. It is satisfied by *store.Store; tests substitute an
// in-memory fake.
type ContentStore interface {
	GetScrapeJob(ctx context.Context, id uuid.UUID) (store.ScrapeJob, error)
	ListRawResultsByJob(ctx context.Context, jobID uuid.UUID, successOnly bool) ([]store.RawResult, error)
	MarkRawResultImported(ctx context.Context, id uuid.UUID) error
	GetOrCreateFolder(ctx context.Context, platform model.Platform, name, description, category, projectID string) (store.Folder, error)
	UpsertPost(ctx context.Context, p model.NormalizedPost, folderID uuid.NullUUID) (uuid.UUID, error)
	HasComment(ctx context.Context, platform model.Platform, postID, commentID string) (bool, error)
	InsertComment(ctx context.Context, platform model.Platform, postID string, c model.NormalizedComment, folderID uuid.NullUUID) error
}

// Stats summarizes one transform pass over a job.
type Stats struct {
	ResultsProcessed int `json:"resultsProcessed"`
	PostsWritten     int `json:"postsWritten"`
	CommentsWritten  int `json:"commentsWritten"`
	CommentsSkipped  int `json:"commentsSkipped"`
	Errors           int `json:"errors"`
}

type Transformer struct {
	store  ContentStore
	logger *slog.Logger
}

func New(st ContentStore, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{store: st, logger: logger}
}

// TransformJob normalizes every successful raw result of a job. A job
// with no successful results is a no-op, not an error. Individual items
// that fail to decode or persist are counted and skipped; only
// infrastructure failures abort the pass.
func (t *Transformer) TransformJob(ctx context.Context, jobID uuid.UUID) (Stats, error) {
	var stats Stats

	job, err := t.store.GetScrapeJob(ctx, jobID)
	if err != nil {
		return stats, err
	}

	results, err := t.store.ListRawResultsByJob(ctx, jobID, true)
	if err != nil {
		return stats, fmt.Errorf("list raw results: %w", err)
	}
	if len(results) == 0 {
		return stats, nil
	}

	folders := newFolderCache(t.store, job)

	for _, res := range results {
		if !res.Payload.Valid {
			continue
		}
		stats.ResultsProcessed++

		item, err := extract.Decode(job.Platform, res.Payload.RawMessage)
		if err != nil {
			t.logger.Warn("decode raw result failed", "job_id", jobID, "result_id", res.ID, "error", err)
			stats.Errors++
			continue
		}

		post, err := normalize.Post(item, normalize.Context{
			SourceURL: res.SourceURL,
			ResultID:  res.ID,
		})
		if err != nil {
			t.logger.Warn("normalize raw result failed", "job_id", jobID, "result_id", res.ID, "error", err)
			stats.Errors++
			continue
		}

		folderID, err := folders.resolve(ctx, res.SourceName)
		if err != nil {
			t.logger.Warn("resolve folder failed", "job_id", jobID, "source", res.SourceName, "error", err)
			stats.Errors++
			continue
		}

		if _, err := t.store.UpsertPost(ctx, post, folderID); err != nil {
			t.logger.Warn("upsert post failed", "job_id", jobID, "post_id", post.PostID, "error", err)
			stats.Errors++
			continue
		}
		stats.PostsWritten++

		written, skipped := t.writeComments(ctx, job.Platform, post, folderID)
		stats.CommentsWritten += written
		stats.CommentsSkipped += skipped

		if err := t.store.MarkRawResultImported(ctx, res.ID); err != nil {
			t.logger.Warn("mark imported failed", "job_id", jobID, "result_id", res.ID, "error", err)
		}
	}

	metrics.RecordNormalized(string(job.Platform), stats.PostsWritten, stats.CommentsWritten)
	t.logger.Info("transform finished",
		"job_id", jobID, "posts", stats.PostsWritten,
		"comments", stats.CommentsWritten, "skipped", stats.CommentsSkipped, "errors", stats.Errors)
	return stats, nil
}

// writeComments inserts a post's comments, skipping ones already stored
// under the same (platform, post, comment) key.
func (t *Transformer) writeComments(ctx context.Context, platform model.Platform, post model.NormalizedPost, folderID uuid.NullUUID) (written, skipped int) {
	for _, c := range post.Comments {
		exists, err := t.store.HasComment(ctx, platform, post.PostID, c.CommentID)
		if err != nil {
			t.logger.Warn("comment lookup failed", "post_id", post.PostID, "comment_id", c.CommentID, "error", err)
			continue
		}
		if exists {
			skipped++
			continue
		}
		if err := t.store.InsertComment(ctx, platform, post.PostID, c, folderID); err != nil {
			t.logger.Warn("insert comment failed", "post_id", post.PostID, "comment_id", c.CommentID, "error", err)
			continue
		}
		written++
	}
	return written, skipped
}

// folderCache resolves the destination folder per source name at most
// once per pass. An explicit output folder on the job wins; otherwise
// folders named "<Platform> - <source name>" are created on demand when
// the job asks for them.
type folderCache struct {
	store ContentStore
	job   store.ScrapeJob
	ids   map[string]uuid.NullUUID
}

func newFolderCache(st ContentStore, job store.ScrapeJob) *folderCache {
	return &folderCache{store: st, job: job, ids: make(map[string]uuid.NullUUID)}
}

func (f *folderCache) resolve(ctx context.Context, sourceName string) (uuid.NullUUID, error) {
	if f.job.OutputFolderID.Valid {
		return f.job.OutputFolderID, nil
	}
	if !f.job.AutoCreateFolders {
		return uuid.NullUUID{}, nil
	}

	if id, ok := f.ids[sourceName]; ok {
		return id, nil
	}

	// The folder category follows what the job scraped, so reels and
	// comments jobs land in their own buckets.
	name := f.job.Platform.DisplayName() + " - " + sourceName
	folder, err := f.store.GetOrCreateFolder(ctx, f.job.Platform, name, "", string(f.job.ContentType), f.job.ProjectID)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	id := uuid.NullUUID{UUID: folder.ID, Valid: true}
	f.ids[sourceName] = id
	return id, nil
}
