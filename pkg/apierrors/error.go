package apierrors

import (
	"fmt"
	"taskmanager/pkg/translator"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
)

// JsonErr represents the JSON structure for apierrors.
type JsonErr struct {
	ErrDetails Err `json:"error"`
}

// Err represents the error with a code and message.
type Err struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ValidationJsonErr adds one entry per failing field to JsonErr.
type ValidationJsonErr struct {
	ErrDetails Err          `json:"error"`
	Fields     []FieldIssue `json:"errors"`
}

// FieldIssue describes a single failing field.
type FieldIssue struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error implements the error interface for JsonErr.
func (e JsonErr) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.ErrDetails.Code, e.ErrDetails.Message)
}

func (e ValidationJsonErr) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s, Fields: %d", e.ErrDetails.Code, e.ErrDetails.Message, len(e.Fields))
}

// CreateError generates a JsonErr with a translated message.
func CreateError(code int, msgKey string, lang string) JsonErr {
	message := GetTransErrorMsg(msgKey, lang)
	return JsonErr{ErrDetails: Err{code, message}}
}

// Violation is a failing field as reported by the validation layer.
type Violation struct {
	Field string
	Rule  string
	Param string
}

// CreateValidationError generates a ValidationJsonErr with one translated
// entry per violation.
func CreateValidationError(code int, msgKey string, violations []Violation, lang string) ValidationJsonErr {
	out := ValidationJsonErr{
		ErrDetails: Err{code, GetTransErrorMsg(msgKey, lang)},
		Fields:     make([]FieldIssue, 0, len(violations)),
	}

	for _, v := range violations {
		out.Fields = append(out.Fields, FieldIssue{
			Field: v.Field,
			Rule:  v.Rule,
			Message: GetTransMsg(MsgValidationPrefix+v.Rule, lang, map[string]any{
				"Field": v.Field,
				"Param": v.Param,
			}),
		})
	}
	return out
}

// GetTransErrorMsg retrieves the translated error message.
func GetTransErrorMsg(msgKey string, lang string) string {
	return GetTransMsg(msgKey, lang, nil)
}

// GetTransMsg retrieves a translated message rendered with data.
func GetTransMsg(msgKey string, lang string, data map[string]any) string {
	l := i18n.NewLocalizer(translator.Translator, lang, "en")
	m := i18n.LocalizeConfig{}
	m.MessageID = msgKey
	m.TemplateData = data
	msg, err := l.Localize(&m)
	if err != nil {
		zap.L().Warn("translation not found", zap.String("lang", lang), zap.String("message_id", msgKey), zap.Error(err))
		return msgKey
	}
	return msg
}
