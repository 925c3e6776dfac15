package mail

import "fmt"

// InvitationEmail is a rendered invitation message.
type InvitationEmail struct {
	Subject string
	Text    string
	HTML    string
}

// ComposeInvitation renders the invitation email for a workspace. inviterName
// may be empty when the directory lookup failed; the copy degrades gracefully.
func ComposeInvitation(workspace, inviterName, acceptLink string) InvitationEmail {
	from := inviterName
	if from == "" {
		from = "A member"
	}

	subject := fmt.Sprintf("%s invited you to join the %s workspace", from, workspace)

	text := fmt.Sprintf(`Hello,

%s invited you to join the %s workspace on cube.

To accept the invitation, please visit:
%s

In case you don't know %s or don't want to join the %s workspace, you don't have to do anything and can safely delete this message.


Have a nice day!`, from, workspace, acceptLink, from, workspace)

	html := fmt.Sprintf(`<p>
  Hello,<br>
  <br>
  %s invited you to join the %s workspace on cube.<br>
  To accept the invitation, <a href="%s">follow this link</a>.<br>
  <br>
  In case you don't know %s or don't want to join the %s workspace, you don't have to do anything and can safely delete this message.<br>
  <br>
  Have a nice day!
</p>`, from, workspace, acceptLink, from, workspace)

	return InvitationEmail{Subject: subject, Text: text, HTML: html}
}
