package model

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies which social network a job scrapes. The string
// values must match what is stored in the database (scrape_jobs.platform,
// posts.platform).
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
)

// ParsePlatform normalizes and validates a platform string.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformInstagram, PlatformFacebook, PlatformLinkedIn, PlatformTikTok:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported platform: %q", s)
	}
}

// DisplayName returns the human-facing platform name used in folder
// names ("TikTok - <source>").
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformFacebook:
		return "Facebook"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	default:
		return string(p)
	}
}

// ContentType distinguishes what kind of content a job targets.
type ContentType string

const (
	ContentPosts    ContentType = "posts"
	ContentReels    ContentType = "reels"
	ContentComments ContentType = "comments"
	ContentProfile  ContentType = "profile"
)

// ParseContentType validates a content type, defaulting to posts when empty.
func ParseContentType(s string) (ContentType, error) {
	if strings.TrimSpace(s) == "" {
		return ContentPosts, nil
	}
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(s))); ct {
	case ContentPosts, ContentReels, ContentComments, ContentProfile:
		return ct, nil
	default:
		return "", fmt.Errorf("unsupported content type: %q", s)
	}
}

// JobSpec is the validated input for creating a scrape job.
type JobSpec struct {
	Name              string
	ProjectID         string
	Platform          Platform
	ContentType       ContentType
	Provider          string
	TargetURLs        []string
	SourceNames       []string
	NumOfPosts        int
	StartDate         *time.Time
	EndDate           *time.Time
	OutputFolderID    *string
	AutoCreateFolders bool
}

// Progress summarizes how far a job has advanced through its URL list.
type Progress struct {
	Percentage        float64 `json:"percentage"`
	TotalURLs         int     `json:"totalUrls"`
	ProcessedURLs     int     `json:"processedUrls"`
	SuccessfulScrapes int     `json:"successfulScrapes"`
	FailedScrapes     int     `json:"failedScrapes"`
}

// Stored post content kinds (posts.content_type). Distinct from the
// job-level ContentType: a "posts" job can still yield reel or video
// rows depending on the media the provider returned.
const (
	PostKindPost  = "post"
	PostKindReel  = "reel"
	PostKindVideo = "video"
)

// NormalizedPost is the canonical, platform-independent shape a raw
// provider item is reduced to before persistence. Media slices are never
// nil; absent media is an empty list.
type NormalizedPost struct {
	Platform    Platform
	PostID      string
	URL         string
	UserPosted  string
	UserID      string
	UserURL     string
	Description string
	Hashtags    []string
	Likes       int64
	NumComments int64
	NumShares   int64
	Views       int64
	Photos      []string
	Videos      []string
	DatePosted  time.Time
	ContentType string
	// DiscoveryInput records which source URL the post was found through.
	DiscoveryInput string

	Comments []NormalizedComment
}

// NormalizedComment is a single comment attached to a NormalizedPost.
// CommentID is unique only within its post, not globally.
type NormalizedComment struct {
	CommentID  string
	UserName   string
	UserID     string
	UserURL    string
	Text       string
	Likes      int64
	NumReplies int64
	CommentURL string
	Date       time.Time
}
