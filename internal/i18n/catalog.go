// Package i18n содержит типизированный каталог пользовательских сообщений.
package i18n

import "strings"

// MessageID перечисляет идентификаторы сообщений каталога.
type MessageID int

const (
	MsgDepositInfo MessageID = iota
	MsgVerificationSuccess
	MsgVerificationFailed
	MsgInvalidTxHash
	MsgNoDepositSession
	MsgReasonNotFound
	MsgReasonTransportFailure
	MsgReasonExecutionFailed
	MsgReasonNotATokenTransfer
	MsgReasonWrongContract
	MsgReasonNotATransferCall
	MsgReasonMalformedPayload
	MsgReasonWrongRecipient
	MsgReasonAmountTooLow
	MsgReasonAmountOverflow
	MsgReasonDuplicateTransaction
)

// Template — шаблон сообщения с перечнем обязательных ключей подстановки.
// Плейсхолдеры записываются как {key}.
type Template struct {
	Text string
	Keys []string
}

// Render подставляет значения в шаблон. Ключи без значений остаются как есть.
func (t Template) Render(values map[string]string) string {
	if len(values) == 0 {
		return t.Text
	}

	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}

	return strings.NewReplacer(pairs...).Replace(t.Text)
}

// Catalog возвращает шаблоны сообщений для одной локали.
type Catalog interface {
	Locale() string
	Template(id MessageID) Template
}

type catalog struct {
	locale    string
	templates map[MessageID]Template
}

func (c *catalog) Locale() string {
	return c.locale
}

func (c *catalog) Template(id MessageID) Template {
	return c.templates[id]
}

// ForLocale возвращает каталог для указанной локали. Неизвестные локали
// получают английский каталог.
func ForLocale(locale string) Catalog {
	if strings.HasPrefix(strings.ToLower(locale), "ru") {
		return russian
	}
	return english
}
