package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor is the position of the last row of a page of transactions.
// Pages are ordered by (tx_date DESC, created_at DESC, transaction_id DESC).
type Cursor struct {
	TxDate        time.Time
	CreatedAt     time.Time
	TransactionID string
}

// EncodeToken creates an opaque base64 token from a cursor.
func EncodeToken(c Cursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.TxDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.TransactionID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	txDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (tx date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{TxDate: txDate, CreatedAt: createdAt, TransactionID: parts[2]}, nil
}
