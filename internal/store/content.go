package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sociograph/internal/model"
)

// Folder mirrors one row of the folders table. Folders are created
// lazily per (platform, source name) pair and never deleted here.
type Folder struct {
	ID          uuid.UUID
	Platform    model.Platform
	Name        string
	Description string
	Category    string
	ProjectID   string
	ParentID    uuid.NullUUID
	CreatedAt   time.Time
}

// GetOrCreateFolder resolves a folder by its (platform, name) natural
// key, creating it on first use. The conflict clause makes the insert a
// no-op when the folder exists, and RETURNING always yields the row.
func (s *Store) GetOrCreateFolder(ctx context.Context, platform model.Platform, name, description, category, projectID string) (Folder, error) {
	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO folders (id, platform, name, description, category, project_id)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (platform, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, platform, name, description, category, project_id, parent_id, created_at`,
		uuid.New(), platform, name, description, category, projectID)

	var f Folder
	err := row.Scan(&f.ID, &f.Platform, &f.Name, &f.Description, &f.Category, &f.ProjectID, &f.ParentID, &f.CreatedAt)
	return f, err
}

// UpsertPost writes a normalized post by its (platform, post_id) natural
// key. Re-running a transform updates the mutable fields in place rather
// than creating a duplicate row. Returns the post row id.
func (s *Store) UpsertPost(ctx context.Context, p model.NormalizedPost, folderID uuid.NullUUID) (uuid.UUID, error) {
	hashtags, err := marshalStrings(p.Hashtags)
	if err != nil {
		return uuid.Nil, err
	}
	photos, err := marshalStrings(p.Photos)
	if err != nil {
		return uuid.Nil, err
	}
	videos, err := marshalStrings(p.Videos)
	if err != nil {
		return uuid.Nil, err
	}

	row := s.DB.QueryRowContext(ctx, `
		INSERT INTO posts (
			id, platform, post_id, folder_id, url, user_posted, user_id, user_url,
			description, hashtags, likes, num_comments, num_shares, views,
			photos, videos, date_posted, content_type, discovery_input
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		ON CONFLICT (platform, post_id) DO UPDATE SET
			folder_id = COALESCE(EXCLUDED.folder_id, posts.folder_id),
			url = EXCLUDED.url,
			user_posted = EXCLUDED.user_posted,
			user_id = EXCLUDED.user_id,
			user_url = EXCLUDED.user_url,
			description = EXCLUDED.description,
			hashtags = EXCLUDED.hashtags,
			likes = EXCLUDED.likes,
			num_comments = EXCLUDED.num_comments,
			num_shares = EXCLUDED.num_shares,
			views = EXCLUDED.views,
			photos = EXCLUDED.photos,
			videos = EXCLUDED.videos,
			date_posted = EXCLUDED.date_posted,
			content_type = EXCLUDED.content_type,
			discovery_input = EXCLUDED.discovery_input,
			updated_at = now()
		RETURNING id`,
		uuid.New(), p.Platform, p.PostID, folderID, p.URL, p.UserPosted, p.UserID, p.UserURL,
		p.Description, hashtags, p.Likes, p.NumComments, p.NumShares, p.Views,
		photos, videos, p.DatePosted, p.ContentType, p.DiscoveryInput)

	var id uuid.UUID
	err = row.Scan(&id)
	return id, err
}

// HasComment reports whether a comment already exists for a post. The
// transform path queries first and skips duplicates rather than relying
// on insert-or-ignore, so richer conflict handling can be added later.
func (s *Store) HasComment(ctx context.Context, platform model.Platform, postID, commentID string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM comments WHERE platform = $1 AND post_id = $2 AND comment_id = $3
		)`,
		platform, postID, commentID).Scan(&exists)
	return exists, err
}

// InsertComment stores one comment row for a post.
func (s *Store) InsertComment(ctx context.Context, platform model.Platform, postID string, c model.NormalizedComment, folderID uuid.NullUUID) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO comments (
			id, platform, post_id, comment_id, folder_id, user_name, user_id, user_url,
			comment_text, num_likes, num_replies, comment_link, comment_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		uuid.New(), platform, postID, c.CommentID, folderID, c.UserName, c.UserID, c.UserURL,
		c.Text, c.Likes, c.NumReplies, c.CommentURL, c.Date)
	return err
}
