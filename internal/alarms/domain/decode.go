package alarms

import (
	"strings"

	"github.com/rs/zerolog"

	telemetry "machine-insights/internal/telemetry/domain"
)

// Decode parses a raw alarm snapshot value into entries.
//
// Absent, empty, or values that do not open with '[' decode to no entries.
// A malformed literal returns a *DecodeError. Elements that are not a list of at
// least four members, or whose members have the wrong types, become placeholders
// so that every element of the snapshot is accounted for.
func Decode(raw *string) ([]Entry, error) {
	if raw == nil {
		return nil, nil
	}
	text := strings.TrimSpace(*raw)
	if text == "" || !strings.HasPrefix(text, "[") {
		return nil, nil
	}

	// a literal opening with '[' and no trailing input is always a list
	value, err := ParseLiteral(text)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(value.Items))
	for _, item := range value.Items {
		entries = append(entries, entryFromValue(item))
	}
	return entries, nil
}

func entryFromValue(item Value) Entry {
	if item.Kind != KindList || len(item.Items) < 4 {
		return Entry{}
	}
	code, ok := item.Items[0].AsInt()
	if !ok {
		return Entry{}
	}
	if item.Items[1].Kind != KindString {
		return Entry{}
	}
	plc, ok := item.Items[2].AsInt()
	if !ok {
		return Entry{}
	}
	line, ok := item.Items[3].AsInt()
	if !ok {
		return Entry{}
	}
	message := item.Items[1].Str
	return Entry{Code: &code, Message: &message, PLCUnit: &plc, Line: &line}
}

// DecodeSnapshot decodes one snapshot; every record inherits its timestamp.
func DecodeSnapshot(snapshot telemetry.AlarmSnapshot) ([]Record, error) {
	entries, err := Decode(snapshot.Raw)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, Record{Entry: entry, Timestamp: snapshot.Timestamp})
	}
	return records, nil
}

// DecodeSnapshots decodes a batch of snapshots. Snapshots that fail to decode are
// logged and skipped; the number skipped is returned alongside the records.
func DecodeSnapshots(snapshots []telemetry.AlarmSnapshot, logger zerolog.Logger) ([]Record, int) {
	var (
		records  []Record
		rejected int
	)
	for _, snapshot := range snapshots {
		decoded, err := DecodeSnapshot(snapshot)
		if err != nil {
			rejected++
			logger.Warn().Err(err).Time("snapshot", snapshot.Timestamp).Msg("alarm snapshot rejected")
			continue
		}
		records = append(records, decoded...)
	}
	return records, rejected
}
