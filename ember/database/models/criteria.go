package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CheckType selects how an achievement's criteria are evaluated.
type CheckType string

const (
	CheckTypeExact     CheckType = "exact"
	CheckTypeThreshold CheckType = "threshold"
	CheckTypeSpecial   CheckType = "special"
	CheckTypeCombo     CheckType = "combo"
	CheckTypeMeta      CheckType = "meta"
)

// StatKind names a lifetime aggregate the evaluator can compare against.
type StatKind string

const (
	StatCurrentStreak     StatKind = "streak"
	StatLongestStreak     StatKind = "longest_streak"
	StatTotalDays         StatKind = "total_days"
	StatMessages          StatKind = "messages"
	StatVoiceMinutes      StatKind = "voice_minutes"
	StatCommands          StatKind = "commands"
	StatReactionsGiven    StatKind = "reactions_given"
	StatReactionsReceived StatKind = "reactions_received"
)

// Criteria is a closed sum over the five check types. Each variant carries
// only the fields its check needs; the evaluator dispatches with a type
// switch instead of inspecting loosely typed maps.
type Criteria interface {
	isCriteria()
}

// ExactCriteria marks a milestone as reached once the stat passes the value.
// Despite the name it compares with >=: a streak passes through every
// integer, and an evaluation cycle that lands after the milestone must still
// count as having reached it.
type ExactCriteria struct {
	Stat  StatKind `json:"stat"`
	Value int64    `json:"value"`
}

// ThresholdCriteria is satisfied once the stat is >= the value.
type ThresholdCriteria struct {
	Stat  StatKind `json:"stat"`
	Value int64    `json:"value"`
}

// SpecialCriteria names a predicate evaluated by its own routine over raw
// daily activity rows.
type SpecialCriteria struct {
	Predicate string `json:"predicate"`
}

// StatThreshold is one leg of a combo.
type StatThreshold struct {
	Stat  StatKind `json:"stat"`
	Value int64    `json:"value"`
}

// ComboCriteria requires every listed stat to independently meet its own
// threshold.
type ComboCriteria struct {
	Parts []StatThreshold `json:"parts"`
}

// MetaCriteria requires Count non-meta achievements already awarded.
type MetaCriteria struct {
	Count int `json:"count"`
}

func (ExactCriteria) isCriteria()     {}
func (ThresholdCriteria) isCriteria() {}
func (SpecialCriteria) isCriteria()   {}
func (ComboCriteria) isCriteria()     {}
func (MetaCriteria) isCriteria()      {}

// CriteriaSpec wraps a Criteria value for storage in a jsonb column. The
// envelope is {"type": <check type>, ...variant fields}.
type CriteriaSpec struct {
	Criteria Criteria
}

type criteriaEnvelope struct {
	Type CheckType       `json:"type"`
	Rest json.RawMessage `json:"-"`
}

func (c CriteriaSpec) MarshalJSON() ([]byte, error) {
	if c.Criteria == nil {
		return []byte("null"), nil
	}

	var typ CheckType
	switch c.Criteria.(type) {
	case ExactCriteria:
		typ = CheckTypeExact
	case ThresholdCriteria:
		typ = CheckTypeThreshold
	case SpecialCriteria:
		typ = CheckTypeSpecial
	case ComboCriteria:
		typ = CheckTypeCombo
	case MetaCriteria:
		typ = CheckTypeMeta
	default:
		return nil, fmt.Errorf("unknown criteria type %T", c.Criteria)
	}

	body, err := json.Marshal(c.Criteria)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", typ))
	return json.Marshal(fields)
}

func (c *CriteriaSpec) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		c.Criteria = nil
		return nil
	}

	var head struct {
		Type CheckType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case CheckTypeExact:
		var v ExactCriteria
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		c.Criteria = v
	case CheckTypeThreshold:
		var v ThresholdCriteria
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		c.Criteria = v
	case CheckTypeSpecial:
		var v SpecialCriteria
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		c.Criteria = v
	case CheckTypeCombo:
		var v ComboCriteria
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		c.Criteria = v
	case CheckTypeMeta:
		var v MetaCriteria
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		c.Criteria = v
	default:
		return fmt.Errorf("unknown criteria type %q", head.Type)
	}
	return nil
}

// Value implements driver.Valuer for jsonb storage.
func (c CriteriaSpec) Value() (driver.Value, error) {
	b, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *CriteriaSpec) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		c.Criteria = nil
		return nil
	case []byte:
		return c.UnmarshalJSON(v)
	case string:
		return c.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported criteria scan type %T", src)
	}
}
