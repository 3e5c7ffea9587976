package normalize

import (
	"sociograph/internal/extract"
	"sociograph/internal/model"
)

var facebookKeys = struct {
	url          []string
	text         []string
	likes        []string
	shares       []string
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
	url:          []string{"post_url", "postUrl", "url"},
	text:         []string{"text", "message"},
	likes:        []string{"likes", "likesCount"},
	shares:       []string{"shares", "sharesCount"},
	commentCount: []string{"comments_count", "comment_count", "commentCount", "num_comments"},
	commentArr:   []string{"comments", "comment_list", "commentsList", "post_comments"},
	timestamp:    []string{"timestamp", "time"},
	mediaType:    []string{"media_type", "mediaType"},
	username:     []string{"username", "pageUsername", "pageName"},
	views:        []string{"views", "video_view_count", "viewsCount"},
	hashtags:     []string{"hashtags"},
	images:       []string{"images"},
	videos:       []string{"videos"},
}

func facebookPost(item extract.RawItem, nctx Context) model.NormalizedPost {
	postURL := item.String(facebookKeys.url...)
	if postURL == "" {
		postURL = nctx.SourceURL
	}
	id := postID(item.String(facebookKeys.url...), nctx.ResultID)

	commentItems := item.Items(facebookKeys.commentArr...)

	return model.NormalizedPost{
		Platform:       model.PlatformFacebook,
		PostID:         id,
		URL:            postURL,
		UserPosted:     item.String(facebookKeys.username...),
		Description:    item.String(facebookKeys.text...),
		Hashtags:       item.StringList(facebookKeys.hashtags...),
		Likes:          item.Int(facebookKeys.likes...),
		NumComments:    resolveCommentCount(item, commentItems, facebookKeys.commentCount...),
		NumShares:      item.Int(facebookKeys.shares...),
		Views:          item.Int(facebookKeys.views...),
		Photos:         item.StringList(facebookKeys.images...),
		Videos:         item.StringList(facebookKeys.videos...),
		DatePosted:     item.Timestamp(facebookKeys.timestamp...),
		ContentType:    contentTypeFor(item.String(facebookKeys.mediaType...), model.PostKindVideo),
		DiscoveryInput: nctx.SourceURL,
		Comments:       comments(commentItems, id, "profileName"),
	}
}
