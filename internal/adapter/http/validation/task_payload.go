package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"taskmanager/internal/core/domain"
)

var ErrInvalidTaskPayload = errors.New("invalid task payload")

const (
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldStatus        = "status"
	fieldPriority      = "priority"
	fieldDueDate       = "dueDate"
	fieldTags          = "tags"
	fieldEstimatedTime = "estimatedTime"
	fieldActualTime    = "actualTime"
)

const (
	typeString      = "string"
	typeNumber      = "number"
	typeStringArray = "array of strings"
)

const dateOnlyLayout = "2006-01-02"

// DecodeObject parses body as a JSON object. Anything else is rejected as a
// whole, before any field is looked at.
func DecodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidTaskPayload
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, ErrInvalidTaskPayload
	}
	return raw, nil
}

// BuildCreateTaskInput decodes a creation payload. Type errors are reported
// together with the entity rules the decoded values break.
func BuildCreateTaskInput(raw map[string]json.RawMessage) (domain.CreateTaskInput, error) {
	d := decoder{raw: raw, errs: &domain.ValidationError{}}
	var in domain.CreateTaskInput

	if title, ok := d.text(fieldTitle, true); ok && title != nil {
		in.Title = *title
	}
	if description, ok := d.text(fieldDescription, true); ok {
		in.Description = description
	}
	if status, ok := d.text(fieldStatus, true); ok && status != nil {
		value := domain.TaskStatus(*status)
		in.Status = &value
	}
	if priority, ok := d.text(fieldPriority, true); ok && priority != nil {
		value := domain.TaskPriority(*priority)
		in.Priority = &value
	}
	if dueDate, ok := d.date(fieldDueDate); ok {
		in.DueDate = dueDate
	}
	if tags, ok := d.tags(fieldTags); ok {
		in.Tags = tags
	}
	if estimate, ok := d.integer(fieldEstimatedTime); ok {
		in.EstimatedTime = estimate
	}
	if actual, ok := d.integer(fieldActualTime); ok {
		in.ActualTime = actual
	}

	if d.failed() {
		_, entityErr := domain.NewTask("", "", in, time.Time{})
		return domain.CreateTaskInput{}, d.merge(entityErr)
	}
	return in, nil
}

// BuildUpdateTaskInput decodes a partial update. Only present keys are set;
// an explicit null clears the optional fields.
func BuildUpdateTaskInput(raw map[string]json.RawMessage) (domain.UpdateTaskInput, error) {
	d := decoder{raw: raw, errs: &domain.ValidationError{}}
	var in domain.UpdateTaskInput

	if title, ok := d.text(fieldTitle, false); ok {
		in.Title = title
	}
	if description, ok := d.text(fieldDescription, true); ok {
		in.Description = description
		in.DescriptionSet = true
	}
	if status, ok := d.text(fieldStatus, false); ok {
		value := domain.TaskStatus(*status)
		in.Status = &value
	}
	if priority, ok := d.text(fieldPriority, false); ok {
		value := domain.TaskPriority(*priority)
		in.Priority = &value
	}
	if dueDate, ok := d.date(fieldDueDate); ok {
		in.DueDate = dueDate
		in.DueDateSet = true
	}
	if tags, ok := d.tags(fieldTags); ok {
		in.Tags = tags
		in.TagsSet = true
	}
	if estimate, ok := d.integer(fieldEstimatedTime); ok {
		in.EstimatedTime = estimate
		in.EstimatedTimeSet = true
	}
	if actual, ok := d.integer(fieldActualTime); ok {
		in.ActualTime = actual
		in.ActualTimeSet = true
	}

	if d.failed() {
		_, entityErr := validUpdateBase().Apply(in, time.Time{})
		return domain.UpdateTaskInput{}, d.merge(entityErr)
	}
	return in, nil
}

// BuildStatusInput decodes the {status} body of a status change. The value
// itself is checked by the service.
func BuildStatusInput(raw map[string]json.RawMessage) (domain.TaskStatus, error) {
	d := decoder{raw: raw, errs: &domain.ValidationError{}}
	if !d.has(fieldStatus) || isJSONNull(raw[fieldStatus]) {
		d.errs.Add(fieldStatus, domain.RuleRequired, "")
		return "", d.errs
	}
	status, ok := d.text(fieldStatus, false)
	if !ok {
		return "", d.errs
	}
	return domain.TaskStatus(*status), nil
}

// validUpdateBase is a task that passes every rule, so applying an update to
// it only reports the fields the update touches.
func validUpdateBase() domain.Task {
	return domain.Task{
		Title:    "-",
		Status:   domain.TaskStatusPending,
		Priority: domain.TaskPriorityMedium,
	}
}

type decoder struct {
	raw  map[string]json.RawMessage
	errs *domain.ValidationError
}

func (d decoder) has(field string) bool {
	_, ok := d.raw[field]
	return ok
}

func (d decoder) failed() bool {
	return len(d.errs.Errors) > 0
}

// merge appends entity violations for fields that decoded cleanly.
func (d decoder) merge(entityErr error) error {
	var verr *domain.ValidationError
	if errors.As(entityErr, &verr) {
		seen := make(map[string]bool, len(d.errs.Errors))
		for _, fieldErr := range d.errs.Errors {
			seen[fieldErr.Field] = true
		}
		for _, fieldErr := range verr.Errors {
			if !seen[fieldErr.Field] {
				d.errs.Errors = append(d.errs.Errors, fieldErr)
			}
		}
	}
	return d.errs.Err()
}

// text reports ok when the field is present and usable. A null value is
// only usable when nullable is set, and then yields a nil pointer.
func (d decoder) text(field string, nullable bool) (*string, bool) {
	value, present := d.raw[field]
	if !present {
		return nil, false
	}
	if isJSONNull(value) {
		if nullable {
			return nil, true
		}
		d.errs.Add(field, domain.RuleType, typeString)
		return nil, false
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		d.errs.Add(field, domain.RuleType, typeString)
		return nil, false
	}
	return &s, true
}

func (d decoder) date(field string) (*time.Time, bool) {
	value, present := d.raw[field]
	if !present {
		return nil, false
	}
	if isJSONNull(value) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		d.errs.Add(field, domain.RuleDate, "")
		return nil, false
	}
	parsed, err := parseDate(strings.TrimSpace(s))
	if err != nil {
		d.errs.Add(field, domain.RuleDate, "")
		return nil, false
	}
	return &parsed, true
}

// tags treats null as an empty list.
func (d decoder) tags(field string) ([]string, bool) {
	value, present := d.raw[field]
	if !present {
		return nil, false
	}
	if isJSONNull(value) {
		return []string{}, true
	}
	var tags []string
	if err := json.Unmarshal(value, &tags); err != nil {
		d.errs.Add(field, domain.RuleType, typeStringArray)
		return nil, false
	}
	return tags, true
}

// integer also accepts a string holding a base-10 integer, which is what a
// number input of an HTML form submits.
func (d decoder) integer(field string) (*int, bool) {
	value, present := d.raw[field]
	if !present {
		return nil, false
	}
	if isJSONNull(value) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			d.errs.Add(field, domain.RuleInteger, "")
			return nil, false
		}
		v := int(n)
		return &v, true
	}
	var f float64
	if err := json.Unmarshal(value, &f); err != nil {
		d.errs.Add(field, domain.RuleType, typeNumber)
		return nil, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		d.errs.Add(field, domain.RuleInteger, "")
		return nil, false
	}
	n := int(f)
	return &n, true
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, errors.New("invalid date " + strconv.Quote(value))
	}
	return t, nil
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
