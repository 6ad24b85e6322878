// Package group определяет контракт runtime группы процессов:
// фиксированный набор рангов 0..N-1 с барьером и коллективным abort.
//
// Реализации:
//   - local: ранги как горутины одного процесса (тесты, демо);
//   - tcp: ранги как отдельные процессы, синхронизируемые через hub;
//   - Singleton: группа из одного процесса (запуск без launcher);
//   - grouptest: записывающий test double.
package group

import (
	"errors"
	"os"
	"runtime"
)

// ExitFailure — статус завершения группы при abort.
const ExitFailure = 1

// Ошибки runtime группы.
var (
	// ErrAborted — группа завершается через abort, барьер не будет пройден.
	ErrAborted = errors.New("group: группа завершена через abort")

	// ErrFinalized — операция после Finalize.
	ErrFinalized = errors.New("group: runtime уже финализирован")

	// ErrConnectionLost — потеряна связь с остальной группой.
	ErrConnectionLost = errors.New("group: потеряна связь с группой")
)

// Runtime — членство текущего процесса в группе.
//
// Barrier блокирует вызывающего до тех пор, пока все ранги не вызовут
// соответствующий Barrier. Таймаута и отмены нет.
//
// Abort завершает всю группу со статусом status и не возвращает управление.
type Runtime interface {
	// Rank возвращает номер текущего процесса в группе.
	Rank() int

	// Size возвращает размер группы.
	Size() int

	// Barrier ждёт все ранги группы.
	Barrier() error

	// Abort завершает все ранги группы. Не возвращает управление.
	Abort(status int)

	// Finalize освобождает членство в группе.
	Finalize() error
}

// Singleton — группа из одного процесса.
// Используется когда процесс запущен без launcher (аналог singleton init в MPI).
type Singleton struct {
	exit      func(int)
	finalized bool
}

var _ Runtime = (*Singleton)(nil)

// NewSingleton создаёт группу из одного процесса.
// exit вызывается при Abort; nil означает os.Exit.
func NewSingleton(exit func(int)) *Singleton {
	if exit == nil {
		exit = os.Exit
	}
	return &Singleton{exit: exit}
}

// Rank всегда возвращает 0.
func (s *Singleton) Rank() int { return 0 }

// Size всегда возвращает 1.
func (s *Singleton) Size() int { return 1 }

// Barrier проходит сразу: других рангов нет.
func (s *Singleton) Barrier() error {
	if s.finalized {
		return ErrFinalized
	}
	return nil
}

// Abort завершает процесс.
func (s *Singleton) Abort(status int) {
	s.exit(status)
	// exit подменяется в тестах и может вернуть управление
	runtime.Goexit()
}

// Finalize отмечает группу завершённой.
func (s *Singleton) Finalize() error {
	if s.finalized {
		return ErrFinalized
	}
	s.finalized = true
	return nil
}
