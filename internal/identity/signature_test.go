package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emojimaker/server/internal/fault"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

// sign builds a delivery signature by hand so the verifier is checked
// against an independent construction of the scheme.
func sign(t *testing.T, secret, id, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret[len("whsec_"):])
	require.NoError(t, err)
	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", id, timestamp, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)
	return v
}

func TestVerify_ValidSignature(t *testing.T) {
	payload := []byte(`{"type":"user.created"}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	v := newTestVerifier(t)
	err := v.Verify(payload, "msg_1", ts, sign(t, testSecret, "msg_1", ts, payload))
	assert.NoError(t, err)
}

func TestVerify_MultipleCandidateSignatures(t *testing.T) {
	payload := []byte(`{}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	good := sign(t, testSecret, "msg_1", ts, payload)

	v := newTestVerifier(t)
	err := v.Verify(payload, "msg_1", ts, "v1,Zm9vYmFy "+good)
	assert.NoError(t, err)
}

func TestVerify_MissingHeadersRejectedAsValidation(t *testing.T) {
	v := newTestVerifier(t)

	for _, headers := range [][3]string{
		{"", "123", "v1,abc"},
		{"msg_1", "", "v1,abc"},
		{"msg_1", "123", ""},
	} {
		err := v.Verify([]byte(`{}`), headers[0], headers[1], headers[2])
		require.Error(t, err)
		assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	}
}

func TestVerify_SignatureMismatch(t *testing.T) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	payload := []byte(`{"type":"user.created"}`)
	tampered := []byte(`{"type":"user.deleted"}`)

	v := newTestVerifier(t)
	err := v.Verify(tampered, "msg_1", ts, sign(t, testSecret, "msg_1", ts, payload))
	require.Error(t, err)
	assert.Equal(t, fault.KindAuth, fault.KindOf(err))
}

func TestVerify_StaleTimestamp(t *testing.T) {
	old := time.Now().Add(-10 * time.Minute)
	ts := strconv.FormatInt(old.Unix(), 10)
	payload := []byte(`{}`)

	v := newTestVerifier(t)
	err := v.Verify(payload, "msg_1", ts, sign(t, testSecret, "msg_1", ts, payload))
	require.Error(t, err)
	assert.Equal(t, fault.KindAuth, fault.KindOf(err))
}
