// Package tcp реализует группу процессов поверх TCP: launcher поднимает hub,
// каждый ранг подключается к нему клиентом и получает group.Runtime.
//
// Протокол строковый, одна команда на строку:
//
//	ранг → hub:  JOIN <rank> <size> | BARRIER | ABORT <status> | FINALIZE
//	hub → ранг:  OK | ERR <текст> | RELEASE | ABORT <status> | BYE
//
// Hub отпускает барьер, когда BARRIER прислали все size рангов. ABORT от
// любого ранга рассылается всем. Разрыв соединения без FINALIZE hub считает
// аварийным завершением ранга и выполняет abort группы со статусом
// group.ExitFailure.
package tcp

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Команды протокола.
const (
	cmdJoin     = "JOIN"
	cmdBarrier  = "BARRIER"
	cmdAbort    = "ABORT"
	cmdFinalize = "FINALIZE"
	cmdOK       = "OK"
	cmdErr      = "ERR"
	cmdRelease  = "RELEASE"
	cmdBye      = "BYE"
)

// ErrProtocol — нарушение протокола hub.
var ErrProtocol = errors.New("tcp: нарушение протокола")

// message — разобранная строка протокола.
type message struct {
	cmd  string
	args []string
}

func parseMessage(line string) (message, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return message{}, fmt.Errorf("%w: пустая строка", ErrProtocol)
	}
	return message{cmd: fields[0], args: fields[1:]}, nil
}

// intArg возвращает i-й аргумент как число.
func (m message) intArg(i int) (int, error) {
	if i >= len(m.args) {
		return 0, fmt.Errorf("%w: %s без аргумента %d", ErrProtocol, m.cmd, i+1)
	}
	n, err := strconv.Atoi(m.args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProtocol, m.cmd, err)
	}
	return n, nil
}

// writeLine пишет команду с аргументами и сбрасывает буфер.
func writeLine(w *bufio.Writer, cmd string, args ...any) error {
	if _, err := w.WriteString(cmd); err != nil {
		return err
	}
	for _, a := range args {
		if _, err := fmt.Fprintf(w, " %v", a); err != nil {
			return err
		}
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
