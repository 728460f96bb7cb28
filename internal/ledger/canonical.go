package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrKeyCollision    = errors.New("canonical json: keys collide after NFC normalization")
	ErrUnsupportedType = errors.New("canonical json: unsupported type")
)

// Canonicalize encodes v as canonical JSON: object keys sorted, strings NFC
// normalized, null object members dropped, no insignificant whitespace.
// Values go through encoding/json first so struct tags and omitempty apply.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}

	var buf bytes.Buffer
	if err := writeValue(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type mapEntry struct {
	key   string
	value any
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch value := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		buf.WriteString(value.String())
	case string:
		return writeString(buf, value)
	case map[string]any:
		return writeMap(buf, value)
	case []any:
		buf.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	encoded, err := json.Marshal(norm.NFC.String(s))
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

func writeMap(buf *bytes.Buffer, m map[string]any) error {
	entries := make([]mapEntry, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for k, val := range m {
		key := norm.NFC.String(k)
		if _, ok := seen[key]; ok {
			return ErrKeyCollision
		}
		seen[key] = struct{}{}
		if val == nil {
			continue
		}
		entries = append(entries, mapEntry{key: key, value: val})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	buf.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, entry.key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeValue(buf, entry.value); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// HashPayload returns the hex SHA-256 of the payload's canonical encoding.
func HashPayload(p Payload) (string, error) {
	b, err := Canonicalize(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

type eventHeader struct {
	EventID       string    `json:"event_id"`
	AssetID       string    `json:"asset_id"`
	Type          EventType `json:"type"`
	OccurredAt    string    `json:"occurred_at"`
	Actor         Actor     `json:"actor"`
	PrevEventID   string    `json:"prev_event_id"`
	PrevEventHash string    `json:"prev_event_hash"`
	PayloadHash   string    `json:"payload_hash"`
}

// HashEvent returns the hex SHA-256 chaining e to its predecessor's hash.
// prevHash is empty for the first event of an asset.
func HashEvent(e Event, prevHash string) (string, error) {
	b, err := Canonicalize(eventHeader{
		EventID:       e.EventID,
		AssetID:       e.AssetID,
		Type:          e.Type,
		OccurredAt:    e.OccurredAt.UTC().Format(time.RFC3339Nano),
		Actor:         e.Actor,
		PrevEventID:   e.PrevEventID,
		PrevEventHash: prevHash,
		PayloadHash:   e.PayloadHash,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
