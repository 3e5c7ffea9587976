package normalize

import (
	"sociograph/internal/extract"
	"sociograph/internal/model"
)

// instagramKeys is the candidate-key table for Instagram items. The
// snake_case names come from pre-processed payloads, the camelCase ones
// straight from the scraping actor.
var instagramKeys = struct {
	url          []string
	caption      []string
	likes        []string
	commentCount []string
	commentArr   []string
	timestamp    []string
	mediaType    []string
	username     []string
	views        []string
	hashtags     []string
	images       []string
	videos       []string
}{
	url:          []string{"post_url", "url"},
	caption:      []string{"caption", "text"},
	likes:        []string{"likes", "likesCount"},
	commentCount: []string{"comments_count", "commentsCount"},
	commentArr:   []string{"comments", "latestComments"},
	timestamp:    []string{"timestamp"},
	mediaType:    []string{"media_type", "type"},
	username:     []string{"username", "ownerUsername"},
	views:        []string{"views", "viewsCount", "videoViewCount"},
	hashtags:     []string{"hashtags"},
	images:       []string{"images"},
	videos:       []string{"videos"},
}

func instagramPost(item extract.RawItem, nctx Context) model.NormalizedPost {
	postURL := item.String(instagramKeys.url...)
	if postURL == "" {
		postURL = nctx.SourceURL
	}
	id := postID(item.String(instagramKeys.url...), nctx.ResultID)

	commentItems := item.Items(instagramKeys.commentArr...)

	photos := item.StringList(instagramKeys.images...)
	if u := item.String("displayUrl"); u != "" {
		photos = append(photos, u)
	}
	videos := item.StringList(instagramKeys.videos...)
	if u := item.String("videoUrl"); u != "" {
		videos = append(videos, u)
	}
	// Carousel posts carry additional media as child posts.
	for _, child := range item.Items("childPosts") {
		if u := child.String("displayUrl"); u != "" {
			photos = append(photos, u)
		}
		if u := child.String("videoUrl"); u != "" {
			videos = append(videos, u)
		}
	}

	return model.NormalizedPost{
		Platform:    model.PlatformInstagram,
		PostID:      id,
		URL:         postURL,
		UserPosted:  item.String(instagramKeys.username...),
		Description: item.String(instagramKeys.caption...),
		Hashtags:    item.StringList(instagramKeys.hashtags...),
		Likes:       item.Int(instagramKeys.likes...),
		NumComments: resolveCommentCount(item, commentItems, instagramKeys.commentCount...),
		// Instagram has no shares concept.
		NumShares:      0,
		Views:          item.Int(instagramKeys.views...),
		Photos:         photos,
		Videos:         videos,
		DatePosted:     item.Timestamp(instagramKeys.timestamp...),
		ContentType:    contentTypeFor(item.String(instagramKeys.mediaType...), model.PostKindReel),
		DiscoveryInput: nctx.SourceURL,
		Comments:       comments(commentItems, id, "ownerUsername"),
	}
}
