package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestLoad_German(t *testing.T) {
	c, err := Load("de")
	require.NoError(t, err)

	assert.Equal(t, language.German, c.Language())
	assert.Contains(t, c.Text(Welcome, 10), "mind. 10 Wörter")
	assert.Equal(t, "📋 Neue Beitrittsanfrage - Bitte prüfen", c.Text(CardTitle))
	assert.Equal(t, "GENEHMIGT von: alice", c.Text(CardDecidedBy, c.Text(CardApproved), "alice"))
}

func TestLoad_EnglishRegion(t *testing.T) {
	c, err := Load("en-US")
	require.NoError(t, err)

	assert.Equal(t, language.English, c.Language())
	assert.Equal(t, "⚠️ Your reason is too long (max. 500 characters).", c.Text(ReasonTooLong, 500))
	assert.Equal(t, "⚠️ Error in join request\n\nboom", c.Text(ErrorAlert, "join request", "boom"))
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load("not a language!")
	require.Error(t, err)
}

func TestText_UnknownKey(t *testing.T) {
	c := MustLoad("de")
	assert.Equal(t, "no-such-key", c.Text("no-such-key"))
}

func TestLocales_HaveSameKeys(t *testing.T) {
	de, err := readLocale("de.yaml")
	require.NoError(t, err)
	en, err := readLocale("en.yaml")
	require.NoError(t, err)

	for key := range de {
		assert.Contains(t, en, key, "missing in en.yaml")
	}
	for key := range en {
		assert.Contains(t, de, key, "missing in de.yaml")
	}
}

func TestLocales_CoverAllKeys(t *testing.T) {
	c := MustLoad("de")
	keys := c.Keys()

	for _, key := range []string{
		Welcome, InvalidInput, ErrorGeneric, ThankYou, DMFailed, SavedNotNotified,
		ReasonTooShort, ReasonTooLong, MessageEmpty, MessageTooLong, MsgAdded, ErrorAddingMsg,
		NoOpenRequest, ApprovedUser, ApprovedUserIntro, DeclinedUser,
		RequestProcessed, RequestNotFound, NotAuthorized, ActionSuccessApproved, ActionSuccessDeclined,
		AlreadyApproved, AlreadyDeclined, ErrorApproving, ErrorDeclining, InvalidCallback,
		UnknownAction, InvalidRequestID, CallbackError, ErrorAlert,
		CardTitle, CardUser, CardID, CardTime, CardReason, CardApproved, CardDeclined, CardDecidedBy,
		ButtonApprove, ButtonDecline, UnknownAdmin, DefaultDisplay,
		AdminDashboard, ButtonPending, ButtonCompleted, PendingTitle, CompletedTitle, NoRequests,
		FetchingPending, FetchingCompleted, CleanupTitle, CleanupPrompt, CleanupEmpty, CleanupNothing,
		CleanupMarked, PrivateOnlyHint,
		CommandStart, CommandAdmin, CommandPending, CommandCompleted, CommandCleanup,
		RelTimeAgo, RelTimeFromNow,
	} {
		assert.Contains(t, keys, key)
	}
}
