package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationKind описывает причину отклонения текста
type ValidationKind string

const (
	ValidationEmpty          ValidationKind = "empty"
	ValidationReasonTooShort ValidationKind = "reason_too_short"
	ValidationReasonTooLong  ValidationKind = "reason_too_long"
	ValidationMessageTooLong ValidationKind = "message_too_long"
)

// Значения по умолчанию для правил валидации
const (
	DefaultMinReasonWords = 10
	DefaultMaxReasonChars = 500
)

// ValidationRules задаёт границы для причины и дополнительных сообщений
type ValidationRules struct {
	MinReasonWords int
	MaxChars       int
}

// DefaultValidationRules возвращает правила по умолчанию
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		MinReasonWords: DefaultMinReasonWords,
		MaxChars:       DefaultMaxReasonChars,
	}
}

// ValidationError возвращается, когда текст пользователя не прошёл проверку.
// Limit содержит нарушенную границу (слова или символы).
type ValidationError struct {
	Kind  ValidationKind
	Limit int
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationEmpty:
		return "text is empty"
	case ValidationReasonTooShort:
		return fmt.Sprintf("reason must contain at least %d words", e.Limit)
	case ValidationReasonTooLong:
		return fmt.Sprintf("reason must not exceed %d characters", e.Limit)
	case ValidationMessageTooLong:
		return fmt.Sprintf("message must not exceed %d characters", e.Limit)
	default:
		return "invalid text"
	}
}

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// NormalizeText обрезает пробелы, приводит переводы строк к \n
// и схлопывает три и более пустых строки в одну пустую
func NormalizeText(input string) string {
	text := strings.TrimSpace(input)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return excessNewlines.ReplaceAllString(text, "\n\n")
}

// CountWords считает слова, разделённые пробельными символами
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ValidateReason нормализует и проверяет причину вступления
func (r ValidationRules) ValidateReason(input string) (string, error) {
	text := NormalizeText(input)

	if text == "" {
		return "", &ValidationError{Kind: ValidationEmpty}
	}

	if r.MaxChars > 0 && charCount(text) > r.MaxChars {
		return "", &ValidationError{Kind: ValidationReasonTooLong, Limit: r.MaxChars}
	}

	if CountWords(text) < r.MinReasonWords {
		return "", &ValidationError{Kind: ValidationReasonTooShort, Limit: r.MinReasonWords}
	}

	return text, nil
}

// ValidateAdditionalMessage нормализует и проверяет дополнительное сообщение
func (r ValidationRules) ValidateAdditionalMessage(input string) (string, error) {
	text := NormalizeText(input)

	if text == "" {
		return "", &ValidationError{Kind: ValidationEmpty}
	}

	if r.MaxChars > 0 && charCount(text) > r.MaxChars {
		return "", &ValidationError{Kind: ValidationMessageTooLong, Limit: r.MaxChars}
	}

	return text, nil
}

// charCount считает символы, а не байты: кириллица и эмодзи занимают несколько байт
func charCount(text string) int {
	return len([]rune(text))
}
