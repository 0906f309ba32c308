package badger

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/objectiveSquid/Chat-site/pkg/models"
)

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// BadgerDB is a key-value store, so we use prefixed keys to organize the chat
// data into logical namespaces. Composite keys carry a big-endian u16 length
// before each embedded username, which keeps prefix scans unambiguous no
// matter what characters a username contains.
//
// Message keys embed the conversation pair in lexicographic order (low user
// first), so one scan covers both directions, and the big-endian send time
// makes keys sort chronologically.
//
// Key Namespace Prefixes:
//
// Data Type      Prefix   Key Format                                   Value Type
// ================================================================================
// Accounts       "u:"     u:<username>                                 User (JSON)
// Token Index    "t:"     t:<hex sha512>                               username (bytes)
// Relations      "r:"     r:<len16><first><secondary>                  Relation (JSON)
// Messages       "m:"     m:<len16><lo><len16><hi><time64><id>         Message (JSON)
// Schema Marker  "meta:"  meta:schema_version                          version (bytes)

const (
	prefixUser     = "u:"
	prefixToken    = "t:"
	prefixRelation = "r:"
	prefixMessage  = "m:"

	keySchemaVersion = "meta:schema_version"
	schemaVersion    = "1"
)

// ============================================================================
// Key Generation Functions
// ============================================================================

// appendLenPrefixed appends a big-endian u16 length followed by the string.
func appendLenPrefixed(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(s)))
	return append(dst, s...)
}

// keyUser generates a key for account data: "u:<username>"
func keyUser(username string) []byte {
	return []byte(prefixUser + username)
}

// keyToken generates a key for the token index: "t:<hex sha512>"
func keyToken(tokenHash []byte) []byte {
	return []byte(prefixToken + hex.EncodeToString(tokenHash))
}

// keyRelation generates a key for the directed (first, secondary) row.
func keyRelation(first, secondary string) []byte {
	key := appendLenPrefixed([]byte(prefixRelation), first)
	return append(key, secondary...)
}

// keyRelationPrefix generates the scan prefix for all rows owned by first.
func keyRelationPrefix(first string) []byte {
	return appendLenPrefixed([]byte(prefixRelation), first)
}

// conversationPrefix generates the scan prefix for the unordered pair {a, b}.
func conversationPrefix(a, b string) []byte {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	key := appendLenPrefixed([]byte(prefixMessage), lo)
	return appendLenPrefixed(key, hi)
}

// keyMessage generates a key for one message. The big-endian time component
// keeps conversation scans in chronological order; the row ID breaks ties.
func keyMessage(a, b string, timeSent int64, id string) []byte {
	key := conversationPrefix(a, b)
	key = binary.BigEndian.AppendUint64(key, uint64(timeSent))
	return append(key, id...)
}

// ============================================================================
// JSON Encoding/Decoding
// ============================================================================

func encodeUser(user *models.User) ([]byte, error) {
	bytes, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	return bytes, nil
}

func decodeUser(bytes []byte) (*models.User, error) {
	var user models.User
	if err := json.Unmarshal(bytes, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

func encodeRelation(relation *models.Relation) ([]byte, error) {
	bytes, err := json.Marshal(relation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode relation: %w", err)
	}
	return bytes, nil
}

func decodeRelation(bytes []byte) (*models.Relation, error) {
	var relation models.Relation
	if err := json.Unmarshal(bytes, &relation); err != nil {
		return nil, fmt.Errorf("failed to decode relation: %w", err)
	}
	return &relation, nil
}

func encodeMessage(message *models.Message) ([]byte, error) {
	bytes, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return bytes, nil
}

func decodeMessage(bytes []byte) (*models.Message, error) {
	var message models.Message
	if err := json.Unmarshal(bytes, &message); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}
	return &message, nil
}
