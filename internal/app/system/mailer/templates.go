package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// WelcomeEmailData holds data for the account-welcome email.
type WelcomeEmailData struct {
	SiteName string
	FullName string
	Email    string
	BaseURL  string
}

// BuildWelcomeEmail creates the email sent when an account is created.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	return Email{
		To:       data.Email,
		Subject:  fmt.Sprintf("Welcome to %s", data.SiteName),
		TextBody: buildWelcomeText(data),
		HTMLBody: buildWelcomeHTML(data),
	}
}

func buildWelcomeText(data WelcomeEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hello %s,\n\n", data.FullName))
	buf.WriteString(fmt.Sprintf("Your %s account is ready.\n\n", data.SiteName))
	buf.WriteString("Sign in here:\n")
	buf.WriteString(data.BaseURL + "\n\n")
	buf.WriteString("If you did not request this account, you can safely ignore this email.\n")
	return buf.String()
}

func buildWelcomeHTML(data WelcomeEmailData) string {
	tmpl := template.Must(template.New("welcome").Parse(welcomeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// ApprovalEmailData holds data for the application-approved email.
type ApprovalEmailData struct {
	SiteName      string
	FullName      string
	Email         string
	CommunityName string
	BaseURL       string
}

// BuildApprovalEmail creates the email sent when a membership application
// is approved.
func BuildApprovalEmail(data ApprovalEmailData) Email {
	return Email{
		To:       data.Email,
		Subject:  fmt.Sprintf("Your %s application was approved", data.SiteName),
		TextBody: buildApprovalText(data),
		HTMLBody: buildApprovalHTML(data),
	}
}

func buildApprovalText(data ApprovalEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hello %s,\n\n", data.FullName))
	if data.CommunityName != "" {
		buf.WriteString(fmt.Sprintf("Your application to join %s has been approved.\n\n", data.CommunityName))
	} else {
		buf.WriteString("Your membership application has been approved.\n\n")
	}
	buf.WriteString("Sign in to get started:\n")
	buf.WriteString(data.BaseURL + "\n")
	return buf.String()
}

func buildApprovalHTML(data ApprovalEmailData) string {
	tmpl := template.Must(template.New("approval").Parse(approvalHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const welcomeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hello {{.FullName}}, your account is ready.
              </p>
              <div style="text-align: center; margin-bottom: 24px;">
                <a href="{{.BaseURL}}" style="display: inline-block; background-color: #4f46e5; color: #ffffff; font-size: 16px; font-weight: 600; text-decoration: none; padding: 12px 32px; border-radius: 6px;">Sign In</a>
              </div>
              <p style="margin: 0; font-size: 14px; color: #6b7280;">
                If you did not request this account, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const approvalHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Application Approved</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hello {{.FullName}},
                {{if .CommunityName}}your application to join <strong>{{.CommunityName}}</strong> has been approved.{{else}}your membership application has been approved.{{end}}
              </p>
              <div style="text-align: center;">
                <a href="{{.BaseURL}}" style="display: inline-block; background-color: #4f46e5; color: #ffffff; font-size: 16px; font-weight: 600; text-decoration: none; padding: 12px 32px; border-radius: 6px;">Sign In</a>
              </div>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
