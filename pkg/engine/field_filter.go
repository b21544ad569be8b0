package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"logrelay/pkg/model"
	"logrelay/pkg/syslog"
)

// Operator defines the comparison operation for field filtering
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpRegex    Operator = "regex"
)

// Field selects which part of a parsed message a filter inspects.
type Field string

const (
	FieldIdentifier Field = "identifier"
	FieldMessage    Field = "message"
	FieldSeverity   Field = "severity"
	FieldFacility   Field = "facility"
)

// FieldFilterProcessor drops messages based on a parsed-field value.
// Severity and facility match against both the numeric value and the
// conventional name ("3" and "err" are equivalent).
type FieldFilterProcessor struct {
	name     string
	field    Field
	operator Operator
	value    string
	regex    *regexp.Regexp // compiled regex if operator is OpRegex
}

// FieldFilterConfig holds configuration for creating a FieldFilterProcessor
type FieldFilterConfig struct {
	Name     string
	Field    Field
	Operator Operator
	Value    string
}

// NewFieldFilterProcessor creates a new field filter processor.
func NewFieldFilterProcessor(cfg FieldFilterConfig) (*FieldFilterProcessor, error) {
	switch cfg.Field {
	case FieldIdentifier, FieldMessage, FieldSeverity, FieldFacility:
	default:
		return nil, fmt.Errorf("unknown filter field %q", cfg.Field)
	}

	p := &FieldFilterProcessor{
		name:     cfg.Name,
		field:    cfg.Field,
		operator: cfg.Operator,
		value:    cfg.Value,
	}

	// Pre-compile regex if needed
	if cfg.Operator == OpRegex {
		re, err := regexp.Compile(cfg.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		p.regex = re
	}

	// Default operator
	if p.operator == "" {
		p.operator = OpEquals
	}

	return p, nil
}

func (p *FieldFilterProcessor) Name() string {
	return p.name
}

// Process checks if the message matches the filter criteria.
// Returns (drop=true, nil) if the selected field matches.
func (p *FieldFilterProcessor) Process(msg *model.Message) (bool, error) {
	switch p.field {
	case FieldIdentifier:
		return p.match(string(msg.Identifier)), nil
	case FieldMessage:
		return p.match(string(msg.Text)), nil
	case FieldSeverity:
		sev := msg.Severity()
		return p.match(strconv.Itoa(sev)) || p.match(syslog.SeverityName(sev)), nil
	case FieldFacility:
		fac := msg.Facility()
		return p.match(strconv.Itoa(fac)) || p.match(syslog.FacilityName(fac)), nil
	}
	return false, nil
}

// match checks a field value against the configured value per the operator.
func (p *FieldFilterProcessor) match(v string) bool {
	switch p.operator {
	case OpEquals:
		return v == p.value

	case OpContains:
		return strings.Contains(v, p.value)

	case OpRegex:
		if p.regex == nil {
			return false
		}
		return p.regex.MatchString(v)

	default:
		return false
	}
}
