package messaging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPayloadShape(t *testing.T) {
	data, err := DefaultPayload().Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, DefaultAuthorID, decoded["author_id"])
	assert.Equal(t, "fais un trade", decoded["content"])
	assert.Equal(t, DefaultServerID, decoded["server_id"])
	assert.Equal(t, "client_chat", decoded["source_type"])

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, meta["isDm"])
	assert.Equal(t, "DM", meta["channelType"])
	assert.Equal(t, DefaultTargetUserID, meta["targetUserId"])

	raw, ok := decoded["raw_message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultChannelID, raw["roomId"])
	assert.Equal(t, DefaultChannelID, raw["channelId"])
	assert.Equal(t, DefaultAuthorID, raw["senderId"])
	assert.Equal(t, DefaultMessageID, raw["messageId"])
	assert.Equal(t, "User-f6a0a8d1", raw["senderName"])
	assert.Equal(t, "fais un trade", raw["message"])
	assert.Equal(t, meta, raw["metadata"])
}

func TestEncodeIsStable(t *testing.T) {
	p := DefaultPayload()
	first, err := p.Encode()
	require.NoError(t, err)
	second, err := p.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIdentityValidate(t *testing.T) {
	assert.NoError(t, DefaultIdentity().Validate())

	id := DefaultIdentity()
	id.TargetUserID = "not-a-uuid"
	err := id.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target user id")
}

func TestSenderNameShortAuthor(t *testing.T) {
	id := Identity{AuthorID: "abc"}
	assert.Equal(t, "User-abc", id.SenderName())
}
