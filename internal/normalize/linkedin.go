package normalize

import (
	"strings"

	"sociograph/internal/extract"
	"sociograph/internal/model"
)

// linkedinKeys covers both payload shapes the provider emits: a flat
// post object, and a wrapper whose "metadata" object holds the post
// fields while "chunk_text" holds the body.
var linkedinKeys = struct {
	url          []string
	text         []string
	likes        []string
	commentCount []string
	shares       []string
	timestamp    []string
	postType     []string
	user         []string
	userURL      []string
	images       []string
	videos       []string
}{
	url:          []string{"url", "post_url", "postUrl"},
	text:         []string{"chunk_text", "text", "commentary"},
	likes:        []string{"num_likes", "numLikes", "likesCount", "likes"},
	commentCount: []string{"num_comments", "numComments", "commentsCount"},
	// LinkedIn separates reposts from generic shares; reposts are the
	// shares-equivalent here.
	shares:    []string{"num_shares", "numShares", "repostsCount", "sharesCount", "shares"},
	timestamp: []string{"date_posted", "publishedDate", "timestamp"},
	postType:  []string{"post_type", "postType"},
	user:      []string{"user_id", "authorUsername", "authorName", "companyName"},
	userURL:   []string{"user_url", "authorUrl"},
	images:    []string{"images"},
	videos:    []string{"videos"},
}

// merged returns a view that looks fields up in the metadata object
// first and the flat item second.
func linkedinMerged(item extract.RawItem) extract.RawItem {
	meta := item.Map("metadata")
	if len(meta.Data) == 0 {
		return item
	}
	merged := make(map[string]any, len(item.Data)+len(meta.Data))
	for k, v := range item.Data {
		merged[k] = v
	}
	for k, v := range meta.Data {
		merged[k] = v
	}
	return extract.RawItem{Platform: item.Platform, Data: merged}
}

func linkedinPost(item extract.RawItem, nctx Context) model.NormalizedPost {
	m := linkedinMerged(item)

	postURL := m.String(linkedinKeys.url...)
	if postURL == "" {
		postURL = nctx.SourceURL
	}

	// The provider assigns its own item id; prefer it over URL parsing.
	id := item.String("id")
	if id == "" {
		id = postID(m.String(linkedinKeys.url...), nctx.ResultID)
	}

	text := m.String(linkedinKeys.text...)
	// chunk_text arrives markdown-flavored; strip the emphasis markers.
	text = strings.ReplaceAll(text, "*", "")

	postType := m.String(linkedinKeys.postType...)
	if postType == "" {
		postType = model.PostKindPost
	}

	return model.NormalizedPost{
		Platform:    model.PlatformLinkedIn,
		PostID:      id,
		URL:         postURL,
		UserPosted:  m.String(linkedinKeys.user...),
		UserID:      m.String("user_id", "authorUsername"),
		UserURL:     m.String(linkedinKeys.userURL...),
		Description: text,
		Hashtags:    []string{},
		Likes:       m.Int(linkedinKeys.likes...),
		// No structured comment array in practice; the explicit count is
		// authoritative for LinkedIn.
		NumComments:    m.Int(linkedinKeys.commentCount...),
		NumShares:      m.Int(linkedinKeys.shares...),
		Views:          m.Int("views"),
		Photos:         m.StringList(linkedinKeys.images...),
		Videos:         m.StringList(linkedinKeys.videos...),
		DatePosted:     m.Timestamp(linkedinKeys.timestamp...),
		ContentType:    postType,
		DiscoveryInput: nctx.SourceURL,
		Comments:       comments(item.Items("comments"), id, "authorUsername", "authorName"),
	}
}
