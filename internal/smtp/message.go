package smtp

import (
	"fmt"
	"strings"

	"logicleafs/backend/internal/domain"
)

// NotificationSubject 返回通知邮件的主题
func NotificationSubject(name string) string {
	return "New Contact Submission from " + name
}

// NotificationBody 返回通知邮件正文，字段按原样逐行列出，最后是留言内容
func NotificationBody(s *domain.Submission) string {
	var b strings.Builder
	b.WriteString("You have a new message from your website's contact form:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Email: %s\n", s.Email)
	fmt.Fprintf(&b, "Phone: %s\n", s.Phone)
	fmt.Fprintf(&b, "Subject: %s\n\n", s.Subject)
	fmt.Fprintf(&b, "Message:\n%s", s.Message)
	return b.String()
}

// ComposeNotification 生成完整的邮件载荷：首行 Subject 头，空行，正文。
//
// 载荷以 UTF-8 字节发送，不做 MIME 编码。
func ComposeNotification(s *domain.Submission) []byte {
	return []byte("Subject: " + NotificationSubject(s.Name) + "\n\n" + NotificationBody(s))
}
