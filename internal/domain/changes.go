package domain

import "strconv"

// Field keys recognized inside a Changes overlay.
const (
	FieldRaw        = "raw"
	FieldEditReason = "edit_reason"
	FieldTitle      = "title"
	FieldCategoryID = "category_id"
	FieldTags       = "tags"
	FieldEditorID   = "editor_id"
)

// Changes is the moderator-proposed edit overlay, stored separately from
// the submitted payload and applied only at publish time. Each successful
// edit proposal replaces the whole map; keys omitted by the caller do not
// survive from an earlier proposal.
type Changes map[string]any

// editableFields is the per-kind whitelist. A reply has a fixed container,
// so title, category and tags cannot be edited on it.
var editableFields = map[ItemKind][]string{
	KindTopic: {FieldRaw, FieldEditReason, FieldTitle, FieldCategoryID, FieldTags},
	KindReply: {FieldRaw, FieldEditReason},
}

// FilterChanges reduces a raw edit payload to the fields editable for the
// given kind. Unrecognized keys are dropped silently, never rejected.
// A category_id that cannot be coerced to an integer is dropped as well;
// this mirrors the permissive contract of the legacy queue and is a known
// hardening candidate.
func FilterChanges(kind ItemKind, payload map[string]any) Changes {
	changes := Changes{}
	for _, field := range editableFields[kind] {
		v, ok := payload[field]
		if !ok {
			continue
		}
		if field == FieldCategoryID {
			id, ok := coerceCategoryID(v)
			if !ok {
				continue
			}
			v = id
		}
		changes[field] = v
	}
	return changes
}

// coerceCategoryID accepts the numeric types JSON decoding can produce
// plus numeric strings.
func coerceCategoryID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
