package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeInvitation(t *testing.T) {
	msg := ComposeInvitation("acme", "Jane", "https://productcube.io/invite/acme")

	assert.Equal(t, "Jane invited you to join the acme workspace", msg.Subject)
	assert.Contains(t, msg.Text, "Jane invited you to join the acme workspace")
	assert.Contains(t, msg.Text, "https://productcube.io/invite/acme")
	assert.Contains(t, msg.HTML, `<a href="https://productcube.io/invite/acme">`)
	assert.Contains(t, msg.HTML, "Jane invited you to join the acme workspace")
}

func TestComposeInvitationWithoutInviterName(t *testing.T) {
	msg := ComposeInvitation("acme", "", "https://productcube.io/invite/acme")

	assert.Equal(t, "A member invited you to join the acme workspace", msg.Subject)
	assert.Contains(t, msg.Text, "A member invited you to join the acme workspace")
	assert.NotContains(t, msg.Text, "  invited")
}
