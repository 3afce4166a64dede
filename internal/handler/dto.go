package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yatube/internal/model"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const mediaURL = "/media/"

type PostJSON struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	PubDate   time.Time `json:"pub_date"`
	Author    string    `json:"author"`
	Image     *string   `json:"image"`
	Group     *uint64   `json:"group"`
	LikeCount int64     `json:"like_count"`
}

type CommentJSON struct {
	ID      uint64    `json:"id"`
	Author  string    `json:"author"`
	Post    uint64    `json:"post"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type GroupJSON struct {
	Title string `json:"title"`
}

type FollowJSON struct {
	User   string `json:"user"`
	Author string `json:"author"`
}

func toPostJSON(p *model.Post) PostJSON {
	out := PostJSON{
		ID:        p.ID,
		Text:      p.Text,
		PubDate:   p.CreatedAt,
		Author:    p.Author.Username,
		Group:     p.GroupID,
		LikeCount: p.LikeCount,
	}
	if p.Image != "" {
		u := imageURL(p.Image)
		out.Image = &u
	}
	return out
}

func toPostsJSON(list []model.Post) []PostJSON {
	out := make([]PostJSON, 0, len(list))
	for i := range list {
		out = append(out, toPostJSON(&list[i]))
	}
	return out
}

func toCommentJSON(cm *model.Comment) CommentJSON {
	return CommentJSON{
		ID:      cm.ID,
		Author:  cm.Author.Username,
		Post:    cm.PostID,
		Text:    cm.Text,
		Created: cm.CreatedAt,
	}
}

func toFollowJSON(f *model.Follow) FollowJSON {
	return FollowJSON{User: f.User.Username, Author: f.Author.Username}
}

func imageURL(rel string) string {
	if rel == "" {
		return ""
	}
	return mediaURL + rel
}

// postPayload 帖子写请求。author 字段只读，忽略
type postPayload struct {
	Text       *string
	GroupID    *uint64
	ClearGroup bool
	Image      *multipart.FileHeader
}

func (p postPayload) update() service.PostUpdate {
	return service.PostUpdate{Text: p.Text, GroupID: p.GroupID, ClearGroup: p.ClearGroup, Image: p.Image}
}

// bindPost 同时支持 JSON 和表单上传，区分字段缺失与显式置空
func bindPost(c *gin.Context) (postPayload, error) {
	var p postPayload
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
		if text, ok := c.GetPostForm("text"); ok {
			p.Text = &text
		}
		if raw, ok := c.GetPostForm("group"); ok {
			if err := p.setGroup(strings.TrimSpace(raw)); err != nil {
				return p, err
			}
		}
		if fh, err := c.FormFile("image"); err == nil {
			p.Image = fh
		} else if !errors.Is(err, http.ErrMissingFile) && c.ContentType() == binding.MIMEMultipartPOSTForm {
			return p, &service.ValidationError{Field: "image", Message: "The submitted data was not a file."}
		}
	default:
		var body map[string]json.RawMessage
		if err := c.ShouldBindJSON(&body); err != nil {
			return p, &service.ValidationError{Message: "Malformed JSON body."}
		}
		if raw, ok := body["text"]; ok {
			var text string
			if err := json.Unmarshal(raw, &text); err != nil {
				return p, &service.ValidationError{Field: "text", Message: "Not a valid string."}
			}
			p.Text = &text
		}
		if raw, ok := body["group"]; ok {
			if string(raw) == "null" {
				p.ClearGroup = true
			} else {
				var id uint64
				if err := json.Unmarshal(raw, &id); err != nil {
					return p, &service.ValidationError{Field: "group", Message: "Incorrect type. Expected pk value."}
				}
				p.GroupID = &id
			}
		}
	}
	return p, nil
}

func (p *postPayload) setGroup(raw string) error {
	if raw == "" {
		p.ClearGroup = true
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return &service.ValidationError{Field: "group", Message: "Incorrect type. Expected pk value."}
	}
	p.GroupID = &id
	return nil
}
