package response

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	keyBadRequest        = "bad_request"
	keyValidationFailed  = "validation_failed"
	keyUnauthenticated   = "unauthenticated"
	keyWrongCredentials  = "wrong_credentials"
	keyForbidden         = "forbidden"
	keyNotFound          = "not_found"
	keySelfInterest      = "self_interest_forbidden"
	keyCapacityExceeded  = "capacity_exceeded"
	keyInvalidStatus     = "invalid_status"
	keyOrganizerNotFound = "organizer_not_found"
	keyEmailExists       = "email_exists"
	keyInternal          = "internal_error"
)

var supported = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var (
	matcher  = language.NewMatcher(supported)
	messages = buildCatalog()
)

var translations = map[string][2]string{
	keyBadRequest:             {"The request is malformed.", "Formato de requisição inválido."},
	keyValidationFailed:       {"Some fields are missing or invalid.", "Campos obrigatórios não preenchidos ou inválidos."},
	keyUnauthenticated:        {"You need to sign in.", "Não autorizado."},
	keyWrongCredentials:       {"Wrong email or password.", "Email ou senha incorretos."},
	keyForbidden:              {"You do not have permission to do this.", "Você não tem permissão para realizar esta ação."},
	keyNotFound:               {"Not found.", "Não encontrado."},
	"event_" + keyNotFound:    {"Event not found.", "Evento não encontrado."},
	"interest_" + keyNotFound: {"Interest not found.", "Interesse não encontrado."},
	"user_" + keyNotFound:     {"User not found.", "Usuário não encontrado."},
	"provider_" + keyNotFound: {"Unknown sign-in provider.", "Provedor de login desconhecido."},
	keySelfInterest:           {"You cannot mark interest in your own event.", "Você não pode marcar interesse no seu próprio evento."},
	keyCapacityExceeded:       {"This event has reached its maximum capacity.", "Este evento já atingiu a capacidade máxima."},
	keyInvalidStatus:          {"Invalid status.", "Status inválido."},
	keyOrganizerNotFound:      {"Your account no longer exists. Sign in again.", "Usuário da sessão não encontrado no banco de dados."},
	keyEmailExists:            {"This email is already registered.", "Este email já está cadastrado."},
	keyInternal:               {"Something went wrong. Try again later.", "Ocorreu um erro. Tente novamente mais tarde."},
}

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range translations {
		for i, tag := range supported {
			if err := b.SetString(tag, key, texts[i]); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// printerFor returns a printer for the best supported match of an
// Accept-Language header value.
func printerFor(acceptLanguage string) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
	_, index, _ := matcher.Match(tags...)

	return message.NewPrinter(supported[index], message.Catalog(messages))
}

// fieldErrors flattens ozzo validation errors into field -> message.
func fieldErrors(err error) map[string]string {
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return nil
	}

	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		fields[field] = fieldErr.Error()
	}
	return fields
}

func stringify(v any) string {
	return fmt.Sprint(v)
}
