// Package normalize maps extracted provider items onto the canonical
// post/comment model. Each platform has its own candidate-key tables
// and quirks; the shared machinery here handles post-id derivation,
// comment dedup keys, and the comment-count resolution rule.
package normalize

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"sociograph/internal/extract"
	"sociograph/internal/model"
)

// Context carries the per-result information a normalizer needs beyond
// the raw item itself.
type Context struct {
	// SourceURL is the job URL the item was scraped through; it doubles
	// as the fallback post URL and is recorded as the discovery input.
	SourceURL string
	// ResultID seeds synthesized post ids when the item has no URL.
	ResultID uuid.UUID
}

// Post reduces a raw provider item to a NormalizedPost for its platform.
func Post(item extract.RawItem, nctx Context) (model.NormalizedPost, error) {
	if len(item.Data) == 0 {
		return model.NormalizedPost{}, fmt.Errorf("empty payload")
	}

	switch item.Platform {
	case model.PlatformInstagram:
		return instagramPost(item, nctx), nil
	case model.PlatformFacebook:
		return facebookPost(item, nctx), nil
	case model.PlatformLinkedIn:
		return linkedinPost(item, nctx), nil
	case model.PlatformTikTok:
		return tiktokPost(item, nctx), nil
	default:
		return model.NormalizedPost{}, fmt.Errorf("unsupported platform: %q", item.Platform)
	}
}

// postID derives the natural post id from the post URL's last non-empty
// path segment. Items without a URL get a synthesized, stable
// "scraped_<resultID>" id so the natural key is never empty.
func postID(postURL string, resultID uuid.UUID) string {
	trimmed := strings.Trim(strings.TrimSpace(postURL), "/")
	if trimmed != "" {
		// Query strings are not part of the id.
		if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
			trimmed = trimmed[:i]
			trimmed = strings.Trim(trimmed, "/")
		}
		if i := strings.LastIndex(trimmed, "/"); i >= 0 {
			trimmed = trimmed[i+1:]
		}
		if trimmed != "" {
			return trimmed
		}
	}
	return "scraped_" + resultID.String()
}

// synthCommentID builds a deterministic fallback comment id from the
// post id and comment text. Identical text on the same post collapses
// into one id; that matches the legacy dedup behavior.
func synthCommentID(postID, text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%s_%d", postID, h.Sum64())
}

// commentKeys is the shared candidate-key table for comment fields.
// Platform-specific author keys are prepended by the caller.
var commentKeys = struct {
	id      []string
	user    []string
	userID  []string
	userURL []string
	text    []string
	likes   []string
	replies []string
	link    []string
	date    []string
}{
	id:      []string{"comment_id", "id", "cid"},
	user:    []string{"author", "user_name", "username", "commenter_name"},
	userID:  []string{"author_id", "user_id", "commenter_id"},
	userURL: []string{"author_url", "user_url", "profile_url"},
	text:    []string{"text", "comment", "content"},
	likes:   []string{"likes", "like_count", "likesCount", "diggCount", "numLikes", "reactions"},
	replies: []string{"replies", "reply_count", "repliesCount", "comments_count"},
	link:    []string{"comment_url", "url", "link"},
	date:    []string{"date", "timestamp", "publishedTime", "publishedDate", "createTime"},
}

// comments normalizes a post's raw comment items. extraUserKeys lets a
// platform put its own author field names ahead of the shared table.
func comments(items []extract.RawItem, postID string, extraUserKeys ...string) []model.NormalizedComment {
	out := make([]model.NormalizedComment, 0, len(items))
	for _, c := range items {
		text := c.String(commentKeys.text...)

		id := c.String(commentKeys.id...)
		if id == "" {
			id = synthCommentID(postID, text)
		}

		userKeys := append(append([]string{}, extraUserKeys...), commentKeys.user...)

		out = append(out, model.NormalizedComment{
			CommentID:  id,
			UserName:   c.String(userKeys...),
			UserID:     c.String(commentKeys.userID...),
			UserURL:    c.String(commentKeys.userURL...),
			Text:       text,
			Likes:      c.Int(commentKeys.likes...),
			NumReplies: c.Int(commentKeys.replies...),
			CommentURL: c.String(commentKeys.link...),
			Date:       c.Timestamp(commentKeys.date...),
		})
	}
	return out
}

// resolveCommentCount prefers the literal length of the extracted
// comment array over any explicit count field: count fields in provider
// payloads are frequently stale or missing. LinkedIn is the exception
// (no structured comment array in practice) and does not go through
// here.
func resolveCommentCount(item extract.RawItem, commentItems []extract.RawItem, countKeys ...string) int64 {
	if len(commentItems) > 0 {
		return int64(len(commentItems))
	}
	return item.Int(countKeys...)
}

// contentTypeFor maps a raw media type onto the stored content kind.
func contentTypeFor(mediaType, videoKind string) string {
	switch strings.ToLower(mediaType) {
	case "video", "reel", "clip":
		return videoKind
	default:
		return model.PostKindPost
	}
}
