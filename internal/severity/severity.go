// Package severity описывает уровни важности сообщений (шкала Syslog)
// и область видимости вывода (только ранг 0 или все ранги).
//
// Порядок уровней фиксирован: меньший ordinal — более срочное сообщение.
// Все атрибуты уровня (имя, тег, цвет) хранятся в одной таблице descriptors,
// поэтому добавление уровня — это одна строка данных.
package severity

import (
	"errors"
	"fmt"
	"strings"
)

// Severity — уровень важности сообщения.
type Severity int

// Уровни в порядке убывания срочности.
const (
	Emergency Severity = iota
	Alert
	Critical
	Error
	Warning
	Notice
	Info
	Debug
)

// ErrUnknownSeverity возвращается Parse для неизвестного имени уровня.
var ErrUnknownSeverity = errors.New("severity: неизвестный уровень")

// descriptor — атрибуты одного уровня.
type descriptor struct {
	// name — каноническое имя для конфигурации.
	name string
	// tag — короткая метка в строке вывода.
	tag string
	// color — hex-цвет метки для терминалов с поддержкой цвета.
	color string
	// aliases — дополнительные имена, принимаемые Parse.
	aliases []string
}

var descriptors = [...]descriptor{
	Emergency: {name: "emergency", tag: "EMERG", color: "#8B0000", aliases: []string{"emerg", "panic"}},
	Alert:     {name: "alert", tag: "ALERT", color: "#FF0000"},
	Critical:  {name: "critical", tag: "CRIT", color: "#FF8C00", aliases: []string{"crit"}},
	Error:     {name: "error", tag: "ERR", color: "#FFA500", aliases: []string{"err"}},
	Warning:   {name: "warning", tag: "WARNING", color: "#FFD700", aliases: []string{"warn"}},
	Notice:    {name: "notice", tag: "NOTICE", color: "#008000"},
	Info:      {name: "info", tag: "INFO", color: "#0000FF"},
	Debug:     {name: "debug", tag: "DEBUG", color: "#800080"},
}

// Count — количество уровней.
const Count = len(descriptors)

// All возвращает все уровни от самого срочного к наименее срочному.
func All() []Severity {
	all := make([]Severity, Count)
	for i := range all {
		all[i] = Severity(i)
	}
	return all
}

// Valid сообщает, входит ли значение в шкалу.
func (s Severity) Valid() bool {
	return s >= Emergency && int(s) < Count
}

// String возвращает каноническое имя уровня.
func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return descriptors[s].name
}

// Tag возвращает метку уровня для строки вывода, например "EMERG".
func (s Severity) Tag() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return descriptors[s].tag
}

// Color возвращает hex-цвет метки уровня.
func (s Severity) Color() string {
	if !s.Valid() {
		return ""
	}
	return descriptors[s].color
}

// AtLeastAsUrgentAs сообщает, что s не менее срочен, чем limit.
// Сравнение идёт только по фиксированному порядку шкалы.
func (s Severity) AtLeastAsUrgentAs(limit Severity) bool {
	return s <= limit
}

// Parse разбирает имя уровня без учёта регистра.
// Принимает канонические имена, метки ("CRIT", "ERR") и синонимы ("warn").
func Parse(value string) (Severity, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for i, d := range descriptors {
		if v == d.name || v == strings.ToLower(d.tag) {
			return Severity(i), nil
		}
		for _, alias := range d.aliases {
			if v == alias {
				return Severity(i), nil
			}
		}
	}
	return Debug, fmt.Errorf("%w: %q", ErrUnknownSeverity, value)
}
