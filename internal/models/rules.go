package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Session marker values carried in SUCCESS log metadata.
const (
	SessionStatusStarted    = "started"
	SessionStatusInProgress = "in_progress"
)

// ContextRules is the typed view of a context's rules JSON. Older rows may
// carry only a subset of these keys; decoding is tolerant and unknown keys
// are preserved through MergeRules.
type ContextRules struct {
	Items               []string `json:"items,omitempty"`
	MinDuration         int      `json:"minDuration,omitempty"`     // seconds
	MaxDuration         int      `json:"maxDuration,omitempty"`     // seconds
	DefaultDuration     int      `json:"defaultDuration,omitempty"` // minutes
	AllowBreaks         bool     `json:"allowBreaks,omitempty"`
	BreakDuration       int      `json:"breakDuration,omitempty"` // seconds
	DistractionBlocking bool     `json:"distractionBlocking,omitempty"`
	PresetTime          int      `json:"presetTime,omitempty"` // default reservation delay, minutes
	TriggerAction       string   `json:"triggerAction,omitempty"`
}

// ContextEnvironment is the typed view of a context's environment JSON.
type ContextEnvironment struct {
	Notifications bool            `json:"notifications,omitempty"`
	SoundEnabled  bool            `json:"soundEnabled,omitempty"`
	StrictMode    bool            `json:"strictMode,omitempty"`
	Theme         string          `json:"theme,omitempty"`
	Apps          ContextAppRules `json:"apps,omitempty"`
}

type ContextAppRules struct {
	Whitelist []string `json:"whitelist,omitempty"`
	Blacklist []string `json:"blacklist,omitempty"`
}

// LogMetadata is the typed view of the known keys in a log's metadata JSON.
// Callers may attach arbitrary extra keys; those ride along untouched.
type LogMetadata struct {
	Status          string `json:"status,omitempty"` // started | in_progress
	StartTime       string `json:"startTime,omitempty"`
	CompletedAt     string `json:"completedAt,omitempty"`
	PreviousCounter *int   `json:"previousCounter,omitempty"`
	NewCounter      *int   `json:"newCounter,omitempty"`
	FinalCounter    *int   `json:"finalCounter,omitempty"`
	BrokenAt        string `json:"brokenAt,omitempty"`
	TitleUpdatedAt  string `json:"titleUpdatedAt,omitempty"`
	AuxiliaryID     string `json:"auxiliaryId,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// ParseRules decodes the typed rule keys, ignoring anything it does not know.
func (c *SacredContext) ParseRules() ContextRules {
	var r ContextRules
	if len(c.Rules) > 0 {
		_ = json.Unmarshal(c.Rules, &r)
	}
	return r
}

// ParseEnvironment decodes the typed environment keys.
func (c *SacredContext) ParseEnvironment() ContextEnvironment {
	var e ContextEnvironment
	if len(c.Environment) > 0 {
		_ = json.Unmarshal(c.Environment, &e)
	}
	return e
}

// MergeRules overlays the given keys onto the existing rules blob without
// dropping keys the typed schema does not model.
func (c *SacredContext) MergeRules(overlay map[string]any) error {
	merged := map[string]any{}
	if len(c.Rules) > 0 {
		if err := json.Unmarshal(c.Rules, &merged); err != nil {
			return err
		}
	}
	for k, v := range overlay {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	c.Rules = datatypes.JSON(data)
	return nil
}

// ParseLogMetadata decodes the known metadata keys of a log.
func ParseLogMetadata(meta datatypes.JSON) LogMetadata {
	var m LogMetadata
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &m)
	}
	return m
}

// MarshalMetadata merges typed keys with caller-supplied extras and encodes
// the result for storage. Typed keys win on collision.
func MarshalMetadata(typed LogMetadata, extra map[string]any) (datatypes.JSON, error) {
	merged := map[string]any{}
	for k, v := range extra {
		merged[k] = v
	}
	typedJSON, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	var typedMap map[string]any
	if err := json.Unmarshal(typedJSON, &typedMap); err != nil {
		return nil, err
	}
	for k, v := range typedMap {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// MarshalJSONValue encodes any value into a JSON column, treating nil as an
// empty object.
func MarshalJSONValue(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON([]byte("{}")), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
