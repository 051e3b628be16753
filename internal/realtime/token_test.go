package realtime

import (
	"strings"
	"testing"
	"time"

	"github.com/nfrund/rollcall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueStudents(t *testing.T) {
	issuer := NewIssuer("test-signing-key")

	cred, err := issuer.Issue(PurposeStudents)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cred.ClientID, "student-app-"))
	assert.Equal(t, []string{CapSubscribe, CapHistory}, cred.Capability[ChannelStudents])
	assert.NotContains(t, cred.Capability, ChannelChatRoom)
	assert.NotEmpty(t, cred.Token)

	// Expiry is fixed at one hour from issuance.
	assert.InDelta(t, time.Hour.Milliseconds(), cred.Expires-cred.Issued, 1000)
}

func TestIssuer_IssueChat(t *testing.T) {
	issuer := NewIssuer("test-signing-key")

	cred, err := issuer.Issue(PurposeChat)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cred.ClientID, "chat-"))
	assert.ElementsMatch(t, []string{CapSubscribe, CapPublish}, cred.Capability[ChannelChatRoom])
}

func TestIssuer_ClientIDsAreUnique(t *testing.T) {
	issuer := NewIssuer("test-signing-key")

	seen := make(map[string]bool)
	for range 50 {
		cred, err := issuer.Issue(PurposeStudents)
		require.NoError(t, err)
		assert.False(t, seen[cred.ClientID], "duplicate client ID %s", cred.ClientID)
		seen[cred.ClientID] = true
	}
}

func TestIssuer_MissingKey(t *testing.T) {
	issuer := NewIssuer("")

	assert.False(t, issuer.Configured())

	cred, err := issuer.Issue(PurposeStudents)
	assert.Nil(t, cred)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestIssuer_VerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-signing-key")

	cred, err := issuer.Issue(PurposeChat)
	require.NoError(t, err)

	claims, err := issuer.Verify(cred.Token)
	require.NoError(t, err)

	assert.Equal(t, cred.ClientID, claims.ClientID)
	assert.True(t, claims.Can(ChannelChatRoom, CapSubscribe))
	assert.True(t, claims.Can(ChannelChatRoom, CapPublish))
	assert.False(t, claims.Can(ChannelStudents, CapSubscribe))
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt, 5*time.Second)
}

func TestIssuer_VerifyRejectsForeignSignature(t *testing.T) {
	cred, err := NewIssuer("key-one").Issue(PurposeStudents)
	require.NoError(t, err)

	_, err = NewIssuer("key-two").Verify(cred.Token)
	assert.Error(t, err)
}

func TestIssuer_UnknownPurpose(t *testing.T) {
	issuer := NewIssuer("test-signing-key")

	_, err := issuer.Issue(Purpose("admin"))
	assert.Error(t, err)
}
