// internal/nlu/phrases.go
package nlu

import "strings"

// Fixed phrase tables. Matching is substring containment over normalized
// text, so multi-word entries match anywhere in the message.
var greetings = []string{
	"hola", "buenas", "buenos dias", "buen dia", "buenas tardes",
	"buenas noches", "que puedes hacer", "ayuda", "help", "/start", "/help",
}

var farewells = []string{
	"gracias", "nos vemos", "bye", "adios", "hasta luego", "hasta pronto",
	"hasta manana", "hasta mañana", "chao", "me despido",
}

// technicians is the fixed roster, scanned in declaration order.
var technicians = []string{
	"andres", "esteban", "juan", "sebastian", "mateo", "jose", "pablo",
}

// IsGreeting reports whether any greeting phrase occurs in the text.
func IsGreeting(text string) bool {
	return containsAny(Normalize(text), greetings)
}

// IsFarewell reports whether any farewell phrase occurs in the text.
func IsFarewell(text string) bool {
	return containsAny(Normalize(text), farewells)
}

func containsAny(t string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// Technicians returns the roster in display form, for prompts.
func Technicians() []string {
	out := make([]string, len(technicians))
	for i, t := range technicians {
		out[i] = capitalize(t)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
