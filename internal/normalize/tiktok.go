package normalize

import (
	"sociograph/internal/extract"
	"sociograph/internal/model"
)

var tiktokKeys = struct {
	url          []string
	text         []string
	likes        []string
	shares       []string
	commentCount []string
	commentArr   []string
	views        []string
	timestamp    []string
	username     []string
	images       []string
	videos       []string
}{
	url:          []string{"post_url", "webVideoUrl", "url"},
	text:         []string{"text", "desc"},
	likes:        []string{"likes", "diggCount", "likesCount"},
	shares:       []string{"shares", "shareCount", "sharesCount"},
	commentCount: []string{"comments_count", "comment_count", "commentCount", "num_comments"},
	commentArr:   []string{"comments", "comment_list", "commentsList", "post_comments"},
	// Views map from the play count on TikTok.
	views:     []string{"playCount", "views", "viewsCount"},
	timestamp: []string{"timestamp", "createTime", "createTimeISO"},
	username:  []string{"username"},
	images:    []string{"images", "covers"},
	videos:    []string{"videos"},
}

func tiktokPost(item extract.RawItem, nctx Context) model.NormalizedPost {
	postURL := item.String(tiktokKeys.url...)
	if postURL == "" {
		postURL = nctx.SourceURL
	}
	id := postID(item.String(tiktokKeys.url...), nctx.ResultID)

	commentItems := item.Items(tiktokKeys.commentArr...)

	username := item.String(tiktokKeys.username...)
	if username == "" {
		username = item.Map("authorMeta").String("name", "nickName")
	}

	videos := item.StringList(tiktokKeys.videos...)
	if u := item.String("videoUrl"); u != "" {
		videos = append(videos, u)
	} else if u := item.Map("videoMeta").String("downloadAddr"); u != "" {
		videos = append(videos, u)
	}

	photos := item.StringList(tiktokKeys.images...)
	if len(photos) == 0 {
		if u := item.Map("videoMeta").String("cover", "coverUrl"); u != "" {
			photos = append(photos, u)
		}
	}

	return model.NormalizedPost{
		Platform:       model.PlatformTikTok,
		PostID:         id,
		URL:            postURL,
		UserPosted:     username,
		Description:    item.String(tiktokKeys.text...),
		Hashtags:       tiktokHashtags(item),
		Likes:          item.Int(tiktokKeys.likes...),
		NumComments:    resolveCommentCount(item, commentItems, tiktokKeys.commentCount...),
		NumShares:      item.Int(tiktokKeys.shares...),
		Views:          item.Int(tiktokKeys.views...),
		Photos:         photos,
		Videos:         videos,
		DatePosted:     item.Timestamp(tiktokKeys.timestamp...),
		ContentType:    model.PostKindVideo,
		DiscoveryInput: nctx.SourceURL,
		Comments:       comments(commentItems, id, "uniqueId", "user"),
	}
}

// tiktokHashtags accepts both plain string lists and the actor's
// [{"name": "..."}] object form.
func tiktokHashtags(item extract.RawItem) []string {
	tags := item.StringList("hashtags")
	if len(tags) > 0 {
		return tags
	}
	for _, obj := range item.Items("hashtags") {
		if name := obj.String("name", "title"); name != "" {
			tags = append(tags, name)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}
