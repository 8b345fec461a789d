package domain

import "time"

// SubmissionsCollection 是提交记录所在的集合（表、流）名称
const SubmissionsCollection = "submissions"

// Submission 表示一次联系表单提交。
//
// Timestamp 由服务端在写入时生成（UTC），从不取自客户端输入。
// 记录只追加写入，不存在更新或删除路径。
type Submission struct {
	ID        string    `json:"-" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Phone     string    `json:"phone" firestore:"phone"`
	Subject   string    `json:"subject" firestore:"subject"`
	Message   string    `json:"message" firestore:"message"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// NewSubmission 使用表单字段和服务端时间构造提交记录
func NewSubmission(name, email, phone, subject, message string, now time.Time) *Submission {
	return &Submission{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Subject:   subject,
		Message:   message,
		Timestamp: now.UTC(),
	}
}
