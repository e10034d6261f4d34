package i18n

import (
	"strings"
	"testing"
)

func TestForLocale(t *testing.T) {
	tests := []struct {
		name   string
		locale string
		want   string
	}{
		{name: "english", locale: "en", want: "en"},
		{name: "english full tag", locale: "en-US", want: "en"},
		{name: "russian", locale: "ru", want: "ru"},
		{name: "russian full tag", locale: "ru-RU", want: "ru"},
		{name: "russian uppercase", locale: "RU", want: "ru"},
		{name: "unknown falls back to english", locale: "de-DE", want: "en"},
		{name: "empty falls back to english", locale: "", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForLocale(tt.locale).Locale(); got != tt.want {
				t.Errorf("ForLocale(%q).Locale() = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}
}

func TestTemplateRender(t *testing.T) {
	tpl := Template{
		Text: "Send at least {minimum} USDT to {address}.",
		Keys: []string{"address", "minimum"},
	}

	got := tpl.Render(map[string]string{
		"address": "TDepositAddress",
		"minimum": "100.00",
	})
	want := "Send at least 100.00 USDT to TDepositAddress."
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	// Без значений текст возвращается как есть.
	if got := tpl.Render(nil); got != tpl.Text {
		t.Errorf("Render(nil) = %q, want %q", got, tpl.Text)
	}

	// Ключи без значений остаются в тексте.
	partial := tpl.Render(map[string]string{"minimum": "100.00"})
	if !strings.Contains(partial, "{address}") {
		t.Errorf("Render() = %q, want {address} kept", partial)
	}
}

func TestCatalogsComplete(t *testing.T) {
	ids := []MessageID{
		MsgDepositInfo,
		MsgVerificationSuccess,
		MsgVerificationFailed,
		MsgInvalidTxHash,
		MsgNoDepositSession,
		MsgReasonNotFound,
		MsgReasonTransportFailure,
		MsgReasonExecutionFailed,
		MsgReasonNotATokenTransfer,
		MsgReasonWrongContract,
		MsgReasonNotATransferCall,
		MsgReasonMalformedPayload,
		MsgReasonWrongRecipient,
		MsgReasonAmountTooLow,
		MsgReasonAmountOverflow,
		MsgReasonDuplicateTransaction,
	}

	for _, cat := range []Catalog{english, russian} {
		for _, id := range ids {
			tpl := cat.Template(id)
			if tpl.Text == "" {
				t.Errorf("locale %s: message %d has no text", cat.Locale(), id)
				continue
			}
			// Каждый объявленный ключ должен присутствовать в тексте.
			for _, key := range tpl.Keys {
				if !strings.Contains(tpl.Text, "{"+key+"}") {
					t.Errorf("locale %s: message %d misses placeholder {%s}", cat.Locale(), id, key)
				}
			}
		}
	}
}
