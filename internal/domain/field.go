package domain

import "fmt"

// ValueKind identifies the semantic type of a field's single value payload.
// Each kind corresponds to one wire key on a Slack Lists field object.
type ValueKind int

const (
	// KindAbsent means no recognized value key was present. Empty fields
	// are a normal case on items fetched from the API.
	KindAbsent ValueKind = iota
	KindText
	KindRichText
	KindSelect
	KindUser
	KindDate
	KindCheckbox
	KindNumber
	KindEmail
	KindPhone
	// KindFallback is the generic "value" key used when no semantic key applies.
	KindFallback
)

// wireKeys lists the recognized payload keys in probe order. A field carries
// exactly one of them; the first key present wins.
var wireKeys = []struct {
	key  string
	kind ValueKind
}{
	{"text", KindText},
	{"rich_text", KindRichText},
	{"select", KindSelect},
	{"user", KindUser},
	{"date", KindDate},
	{"checkbox", KindCheckbox},
	{"number", KindNumber},
	{"email", KindEmail},
	{"phone", KindPhone},
}

const fallbackKey = "value"

// WireKey returns the JSON key under which this kind's payload travels.
func (k ValueKind) WireKey() string {
	switch k {
	case KindText:
		return "text"
	case KindRichText:
		return "rich_text"
	case KindSelect:
		return "select"
	case KindUser:
		return "user"
	case KindDate:
		return "date"
	case KindCheckbox:
		return "checkbox"
	case KindNumber:
		return "number"
	case KindEmail:
		return "email"
	case KindPhone:
		return "phone"
	case KindFallback:
		return fallbackKey
	default:
		return ""
	}
}

// InvalidArgumentError reports malformed caller input caught before any
// network call is made. It is never retried and surfaces verbatim.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

// Field is one column's value on one item. In the update context it also
// carries the row it targets (the API calls that shape a "cell").
type Field struct {
	ColumnID string
	RowID    string
	Key      string
	Kind     ValueKind
	Value    any
}

// ParseField reads a loosely-typed field object into its tagged form. It
// never fails: a field without any recognized value key parses as KindAbsent.
func ParseField(raw map[string]any) Field {
	var f Field
	f.ColumnID, _ = raw["column_id"].(string)
	f.RowID, _ = raw["row_id"].(string)
	f.Key, _ = raw["key"].(string)
	for _, wk := range wireKeys {
		if v, ok := raw[wk.key]; ok {
			f.Kind = wk.kind
			f.Value = v
			return f
		}
	}
	if v, ok := raw[fallbackKey]; ok {
		f.Kind = KindFallback
		f.Value = v
	}
	return f
}

// ValidateForCreate enforces the invariants slackLists.items.create requires
// of every initial field: a target column and a value payload.
func (f Field) ValidateForCreate() error {
	if f.ColumnID == "" {
		return &InvalidArgumentError{Reason: "Each field must have a 'column_id'"}
	}
	if f.Kind == KindAbsent {
		return &InvalidArgumentError{
			Reason: fmt.Sprintf("Field for column '%s' must have a value", f.ColumnID),
		}
	}
	return nil
}

// Normalize coerces the payload into the exact wire shape the slackLists.*
// write methods accept:
//
//   - a plain-string text payload becomes a one-leaf rich_text document
//   - a pre-built array under the text key is renamed to rich_text as-is
//   - scalar select/user/date/number/email/phone values are wrapped in a
//     singleton array
//   - checkbox booleans and already-normalized payloads pass through
//
// Applying Normalize to an already-normalized field changes nothing.
func (f Field) Normalize() Field {
	switch f.Kind {
	case KindText:
		if s, ok := f.Value.(string); ok {
			f.Kind = KindRichText
			f.Value = RichTextFromString(s)
		} else if _, ok := f.Value.([]any); ok {
			// Caller pre-built rich text blocks under the text key.
			f.Kind = KindRichText
		}
	case KindSelect, KindUser, KindDate, KindNumber, KindEmail, KindPhone:
		if _, ok := f.Value.([]any); !ok {
			f.Value = []any{f.Value}
		}
	case KindRichText, KindCheckbox, KindFallback, KindAbsent:
		// Already wire-shaped (or nothing to shape).
	}
	return f
}

// Wire renders the field as the JSON object shape the API expects.
func (f Field) Wire() map[string]any {
	m := make(map[string]any, 4)
	if f.RowID != "" {
		m["row_id"] = f.RowID
	}
	if f.ColumnID != "" {
		m["column_id"] = f.ColumnID
	}
	if f.Key != "" {
		m["key"] = f.Key
	}
	if f.Kind != KindAbsent {
		m[f.Kind.WireKey()] = f.Value
	}
	return m
}

// RichTextFromString builds the minimal rich text document the API accepts in
// place of a plain string: one block holding one section holding one literal
// text leaf.
func RichTextFromString(s string) []any {
	return []any{
		map[string]any{
			"type": "rich_text",
			"elements": []any{
				map[string]any{
					"type": "rich_text_section",
					"elements": []any{
						map[string]any{"type": "text", "text": s},
					},
				},
			},
		},
	}
}

// ExtractFieldValue returns the representative value of a wire-shaped field
// for filtering and display: the boolean itself for checkbox, the array as-is
// for select/user/date/number/email/phone (even when it has one element), the
// plain string for text, the generic "value" payload as a fallback, and nil
// when no recognized key is present. It never fails.
func ExtractFieldValue(raw map[string]any) any {
	f := ParseField(raw)
	if f.Kind == KindAbsent {
		return nil
	}
	return f.Value
}
