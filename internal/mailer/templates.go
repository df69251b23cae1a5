package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #4f46e5; padding: 30px; text-align: center; color: white;">
    <h1 style="margin: 0; font-size: 28px;">Spendtrack</h1>
  </div>
  <div style="padding: 30px; background: #f8f9fa;">
    <h2 style="color: #333;">Password Reset Request</h2>
    <p style="color: #666; line-height: 1.6;">Hello <strong>{{.Name}}</strong>,</p>
    <p style="color: #666; line-height: 1.6;">
      You have requested to reset your password. Use the code below to verify your identity:
    </p>
    <div style="background: #fff; padding: 20px; border-radius: 10px; text-align: center; border: 2px dashed #4f46e5; margin: 20px 0;">
      <div style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #4f46e5;">{{.Code}}</div>
      <p style="color: #666; font-size: 14px;">This code is valid for 10 minutes</p>
    </div>
    <p style="color: #999; font-size: 14px; text-align: center;">
      If you didn't request this, please ignore this email.
    </p>
  </div>
</div>`))

var resetConfirmationTemplate = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #059669; padding: 30px; text-align: center; color: white;">
    <h1 style="margin: 0; font-size: 28px;">Spendtrack</h1>
  </div>
  <div style="padding: 30px; background: #f8f9fa;">
    <h2 style="color: #333; text-align: center;">Password Updated Successfully</h2>
    <p style="color: #666; line-height: 1.6; text-align: center;">Hello <strong>{{.Name}}</strong>,</p>
    <p style="color: #666; line-height: 1.6; text-align: center;">
      Your password has been updated successfully.
    </p>
    <div style="background: #fff; padding: 20px; border-radius: 10px; text-align: center; border-left: 4px solid #059669; margin: 20px 0;">
      <p style="color: #666; margin: 0;">
        <strong>Account:</strong> {{.Email}}<br>
        <strong>Time:</strong> {{.Time}}
      </p>
    </div>
    <p style="color: #92400e; font-size: 14px; text-align: center;">
      If you didn't make this change, please contact us immediately.
    </p>
  </div>
</div>`))

// RenderOTPEmail renders the password-reset code email.
func RenderOTPEmail(name, code string) (htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	if err := otpTemplate.Execute(&buf, map[string]string{"Name": name, "Code": code}); err != nil {
		return "", "", err
	}
	text := fmt.Sprintf("Your password reset code is: %s. This code is valid for 10 minutes.", code)
	return buf.String(), text, nil
}

// RenderResetConfirmationEmail renders the password-changed confirmation email.
func RenderResetConfirmationEmail(name, email string, when time.Time) (htmlBody, textBody string, err error) {
	var buf bytes.Buffer
	data := map[string]string{
		"Name":  name,
		"Email": email,
		"Time":  when.Format(time.RFC1123),
	}
	if err := resetConfirmationTemplate.Execute(&buf, data); err != nil {
		return "", "", err
	}
	text := "Your password has been updated successfully. If you didn't make this change, please contact us immediately."
	return buf.String(), text, nil
}
