package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Standard values
	cursor := Cursor{
		TxDate:        time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC),
		TransactionID: "8c1d6c1e-3f0b-4c55-9a43-1a2b3c4d5e6f",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor, decoded, "Cursor should match after decode")

	// Current time values
	now := time.Now().UTC()
	nowToken := EncodeToken(Cursor{TxDate: now, CreatedAt: now, TransactionID: "x"})
	decodedNow, err := DecodeToken(nowToken)
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNow.TxDate))
	assert.True(t, now.Equal(decodedNow.CreatedAt))
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	missingID := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|2024-05-15T00:00:00Z"))
	_, err = DecodeToken(missingID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.URLEncoding.EncodeToString([]byte("notadate|2024-05-15T00:00:00Z|id"))
	_, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tx date parse")

	badCreated := base64.URLEncoding.EncodeToString([]byte("2024-05-15T00:00:00Z|nope|id"))
	_, err = DecodeToken(badCreated)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}
