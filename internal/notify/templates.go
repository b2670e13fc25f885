package notify

import (
	"bytes"
	"html/template"
)

// PasswordResetSubject is the subject line of password reset emails.
const PasswordResetSubject = "Password Reset"

type resetPasswordEmailTemplateData struct {
	Link  string
	Email string
}

const templateResetPasswordEmailRaw = `<p>Click <a href="{{.Link}}">here</a> to reset your password</p>
<p>The link expires in 15 minutes. You are receiving this email because a password reset was
requested for {{.Email}}. If you did not perform this action, you can ignore this email.</p>
`

var resetPasswordTmpl = template.Must(template.New("reset_password").Parse(templateResetPasswordEmailRaw))

// RenderPasswordReset builds the HTML body of the password reset email.
func RenderPasswordReset(link, email string) (string, error) {
	var buf bytes.Buffer
	err := resetPasswordTmpl.Execute(&buf, resetPasswordEmailTemplateData{
		Link:  link,
		Email: email,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
