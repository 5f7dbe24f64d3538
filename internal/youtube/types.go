package youtube

import (
	"strconv"
	"time"

	"github.com/vidwarden/vidwarden/internal/models"
)

// Data API v3 wire types, reduced to the fields this service reads.

type ytVideoListResponse struct {
	Items []ytVideo `json:"items"`
}

type ytVideo struct {
	ID         string        `json:"id"`
	Snippet    ytSnippet     `json:"snippet"`
	Statistics *ytStatistics `json:"statistics,omitempty"`
	Status     *ytStatus     `json:"status,omitempty"`
}

type ytSnippet struct {
	PublishedAt  time.Time `json:"publishedAt,omitzero"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelTitle string    `json:"channelTitle,omitempty"`
	CategoryID   string    `json:"categoryId,omitempty"`
}

// The API serializes counters as decimal strings.
type ytStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type ytStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type ytVideoUpdateRequest struct {
	ID      string    `json:"id"`
	Snippet ytSnippet `json:"snippet"`
}

type ytCommentThreadListResponse struct {
	Items []ytCommentThread `json:"items"`
}

type ytCommentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		VideoID         string     `json:"videoId"`
		TopLevelComment *ytComment `json:"topLevelComment"`
	} `json:"snippet"`
	Replies *struct {
		Comments []ytComment `json:"comments"`
	} `json:"replies,omitempty"`
}

type ytComment struct {
	ID      string           `json:"id"`
	Snippet ytCommentSnippet `json:"snippet"`
}

type ytCommentSnippet struct {
	PublishedAt  time.Time `json:"publishedAt,omitzero"`
	VideoID      string    `json:"videoId,omitempty"`
	ParentID     string    `json:"parentId,omitempty"`
	TextOriginal string    `json:"textOriginal,omitempty"`
	TextDisplay  string    `json:"textDisplay,omitempty"`
	AuthorName   string    `json:"authorDisplayName,omitempty"`
}

type ytCommentThreadInsertRequest struct {
	Snippet struct {
		VideoID         string `json:"videoId"`
		TopLevelComment struct {
			Snippet struct {
				TextOriginal string `json:"textOriginal"`
			} `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type ytCommentInsertRequest struct {
	Snippet struct {
		ParentID     string `json:"parentId"`
		TextOriginal string `json:"textOriginal"`
	} `json:"snippet"`
}

// ytErrorResponse is the platform's error envelope.
type ytErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (v ytVideo) toModel() *models.Video {
	video := &models.Video{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ChannelTitle: v.Snippet.ChannelTitle,
		PublishedAt:  v.Snippet.PublishedAt,
	}
	if v.Statistics != nil {
		video.ViewCount = parseCount(v.Statistics.ViewCount)
		video.LikeCount = parseCount(v.Statistics.LikeCount)
		video.CommentCount = parseCount(v.Statistics.CommentCount)
	}
	if v.Status != nil {
		video.PrivacyStatus = v.Status.PrivacyStatus
	}
	return video
}

func (c ytComment) toModel() models.Comment {
	text := c.Snippet.TextOriginal
	if text == "" {
		text = c.Snippet.TextDisplay
	}
	return models.Comment{
		ID:          c.ID,
		ParentID:    c.Snippet.ParentID,
		VideoID:     c.Snippet.VideoID,
		Author:      c.Snippet.AuthorName,
		Text:        text,
		PublishedAt: c.Snippet.PublishedAt,
	}
}

func (t ytCommentThread) toModel() models.Comment {
	var comment models.Comment
	if t.Snippet.TopLevelComment != nil {
		comment = t.Snippet.TopLevelComment.toModel()
	}
	if comment.ID == "" {
		comment.ID = t.ID
	}
	if comment.VideoID == "" {
		comment.VideoID = t.Snippet.VideoID
	}
	if t.Replies != nil {
		for _, reply := range t.Replies.Comments {
			comment.Replies = append(comment.Replies, reply.toModel())
		}
	}
	return comment
}

func parseCount(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
