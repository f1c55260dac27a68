// Package reply renders lookup outcomes as Telegram MarkdownV2 text.
package reply

import (
	"strings"

	"github.com/go-telegram/bot"

	"github.com/edgard/codexbot/internal/config"
	"github.com/edgard/codexbot/internal/lookup"
)

var labels = map[lookup.Kind]map[lookup.FieldName]string{
	lookup.KindPersonID: {
		lookup.FieldFullName:         "Nombres Completos",
		lookup.FieldGivenNames:       "Nombres",
		lookup.FieldPaternalSurname:  "Apellido paterno",
		lookup.FieldMaternalSurname:  "Apellido materno",
		lookup.FieldVerificationCode: "Código de verificación",
	},
	lookup.KindEntityID: {
		lookup.FieldFullName:   "Nombre o Razón Social",
		lookup.FieldStatus:     "Estado",
		lookup.FieldCondition:  "Condición",
		lookup.FieldAddress:    "Dirección",
		lookup.FieldStreet:     "Vía",
		lookup.FieldDistrict:   "Distrito",
		lookup.FieldProvince:   "Provincia",
		lookup.FieldDepartment: "Departamento",
		lookup.FieldUbigeo:     "Ubigeo",
	},
}

// Formatter builds reply texts. Every string it returns is valid MarkdownV2.
type Formatter struct {
	header   string
	messages config.MessagesConfig
}

// New creates a Formatter with the attribution header from format and the
// fixed not-found and provider-error texts from messages.
func New(format config.FormatConfig, messages config.MessagesConfig) *Formatter {
	header := "[" + escape(format.DeveloperName) + "](" + escapeLinkURL(format.DeveloperURL) + ")" +
		" \\- " + escape("["+format.BotName+"]")

	return &Formatter{header: header, messages: messages}
}

// Format renders a found result: attribution header, query echo, every
// canonical field of the kind in display order and the requesting user.
// A result that was not found renders as NotFound.
func (f *Formatter) Format(res lookup.Result, caller string) string {
	if !res.Found {
		return f.NotFound(res.Query.Kind)
	}

	var sb strings.Builder
	sb.WriteString(f.header)
	sb.WriteString("\n\n")
	sb.WriteString(escape("Información del " + kindLabel(res.Query.Kind) + " "))
	sb.WriteString("*" + escape(res.Query.Value) + "*:\n")

	kindLabels := labels[res.Query.Kind]
	for _, field := range res.Fields {
		label, ok := kindLabels[field.Name]
		if !ok {
			continue
		}
		sb.WriteString(escape(label))
		sb.WriteString(": ")
		// MarkdownV2 rejects an empty bold entity.
		if field.Value != "" {
			sb.WriteString("*" + escape(field.Value) + "*")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nBy: ")
	sb.WriteString(escape(caller))
	return sb.String()
}

// NotFound returns the "no data" text for kind.
func (f *Formatter) NotFound(kind lookup.Kind) string {
	if kind == lookup.KindEntityID {
		return escape(f.messages.EntityNotFoundMsg)
	}
	return escape(f.messages.PersonNotFoundMsg)
}

// ProviderError returns the "try again later" text for kind.
func (f *Formatter) ProviderError(kind lookup.Kind) string {
	if kind == lookup.KindEntityID {
		return escape(f.messages.EntityProviderErrorMsg)
	}
	return escape(f.messages.PersonProviderErrorMsg)
}

func kindLabel(kind lookup.Kind) string {
	return strings.ToUpper(kind.String())
}

var backslashes = strings.NewReplacer(`\`, `\\`)

// escape makes s literal MarkdownV2 text. bot.EscapeMarkdown leaves the
// backslash alone, so it is doubled first.
func escape(s string) string {
	return bot.EscapeMarkdown(backslashes.Replace(s))
}

// escapeLinkURL escapes the characters MarkdownV2 reserves inside (...) of an inline link.
func escapeLinkURL(u string) string {
	r := strings.NewReplacer(`\`, `\\`, `)`, `\)`)
	return r.Replace(u)
}
