package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"

	"gorm.io/gorm"
)

// Mail 发送一封 HTML 邮件，pkg.Mailer 实现了它
type Mail interface {
	Send(to, subject, htmlBody string) error
}

// EmailService 把关注、评论事件转成通知邮件
type EmailService struct {
	mail  Mail
	users *database.UserRepository
}

type notification struct {
	NotifyUserID uint64 `json:"notify_user_id"`
	Follower     string `json:"follower"`
	Commenter    string `json:"commenter"`
	Text         string `json:"text"`
	PostID       uint64 `json:"post_id"`
}

func NewEmailService(mail Mail, db *gorm.DB) *EmailService {
	return &EmailService{mail: mail, users: &database.UserRepository{DB: db}}
}

// Sender 作为 outbox sender 使用，收件人没有邮箱或通知自己时跳过
func (s *EmailService) Sender() Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		if ob.EventType != database.EventFollow && ob.EventType != database.EventComment {
			return nil
		}
		var n notification
		if err := json.Unmarshal([]byte(ob.Payload), &n); err != nil {
			return fmt.Errorf("decode outbox payload %d: %w", ob.ID, err)
		}
		if n.NotifyUserID == 0 || n.NotifyUserID == ob.ActorID {
			return nil
		}
		to, err := s.users.FindByID(ctx, n.NotifyUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if to.Email == "" {
			return nil
		}

		var subject, body string
		switch ob.EventType {
		case database.EventFollow:
			subject = "New follower"
			body = pkg.FollowNotificationHTML(n.Follower)
		default:
			subject = "New comment on your post"
			body = pkg.CommentNotificationHTML(n.Commenter, n.Text, n.PostID)
		}
		if err = s.mail.Send(to.Email, subject, body); err != nil {
			return err
		}
		slog.DebugContext(ctx, "notification sent", "event", ob.EventType, "to_user", to.ID)
		return nil
	}
}
