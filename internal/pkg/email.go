package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Mailer SMTP 发信
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	d := gomail.NewDialer(host, port, username, password)
	d.TLSConfig = &tls.Config{ServerName: host}
	return &Mailer{dialer: d, from: from}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

func FollowNotificationHTML(follower string) string {
	return fmt.Sprintf(`<p>Hello,</p><p><b>@%s</b> is now following you.</p>`, html.EscapeString(follower))
}

func CommentNotificationHTML(commenter, text string, postID uint64) string {
	return fmt.Sprintf(`<p>Hello,</p><p><b>@%s</b> commented on your post #%d:</p><blockquote>%s</blockquote>`,
		html.EscapeString(commenter), postID, html.EscapeString(text))
}
