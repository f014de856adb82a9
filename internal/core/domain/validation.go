package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

func normalizeTask(t Task) Task {
	t.Title = strings.TrimSpace(t.Title)
	if t.Description != nil {
		description := strings.TrimSpace(*t.Description)
		t.Description = &description
	}
	t.Tags = normalizeTags(t.Tags)
	return t
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		normalized = append(normalized, tag)
	}
	return normalized
}

func validateTask(t Task) error {
	verr := &ValidationError{}

	switch {
	case t.Title == "":
		verr.Add("title", RuleRequired, "")
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		verr.Add("title", RuleMaxLength, strconv.Itoa(MaxTitleLength))
	}

	if t.Description != nil && utf8.RuneCountInString(*t.Description) > MaxDescriptionLength {
		verr.Add("description", RuleMaxLength, strconv.Itoa(MaxDescriptionLength))
	}

	if !t.Status.Valid() {
		verr.Add("status", RuleOneOf, joinStatuses())
	}
	if !t.Priority.Valid() {
		verr.Add("priority", RuleOneOf, joinPriorities())
	}

	if t.EstimatedTime != nil && *t.EstimatedTime < 0 {
		verr.Add("estimatedTime", RuleMin, "0")
	}
	if t.ActualTime != nil && *t.ActualTime < 0 {
		verr.Add("actualTime", RuleMin, "0")
	}

	return verr.Err()
}

// ValidateStatus checks a status supplied on its own, as in a status change.
func ValidateStatus(status TaskStatus) error {
	if status.Valid() {
		return nil
	}
	return (&ValidationError{}).Add("status", RuleOneOf, joinStatuses()).Err()
}

func joinStatuses() string {
	values := make([]string, 0, len(taskStatuses))
	for _, status := range taskStatuses {
		values = append(values, string(status))
	}
	return strings.Join(values, " ")
}

func joinPriorities() string {
	values := make([]string, 0, len(taskPriorities))
	for _, priority := range taskPriorities {
		values = append(values, string(priority))
	}
	return strings.Join(values, " ")
}
