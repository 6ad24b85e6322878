// Package logging предоставляет диагностическое структурированное логирование
// для компонентов rankmgr.
//
// Диагностический лог отделён от строк координатора: координатор пишет
// пользовательские строки в stdout, Logger — только в stderr или файл.
package logging

// Logger определяет интерфейс для структурированного логирования.
// Реализации: SlogAdapter (slog из stdlib) и NopLogger.
//
//	logger.Info("ранг подключён к hub", "rank", rank, "size", size)
type Logger interface {
	// Debug записывает сообщение уровня DEBUG.
	Debug(msg string, args ...any)

	// Info записывает сообщение уровня INFO.
	Info(msg string, args ...any)

	// Warn записывает сообщение уровня WARN.
	Warn(msg string, args ...any)

	// Error записывает сообщение уровня ERROR.
	Error(msg string, args ...any)

	// With возвращает новый Logger с добавленными атрибутами.
	//
	//	logger.With("rank", rank).Warn("барьер не пройден")
	With(args ...any) Logger
}

// ForRank возвращает Logger с атрибутами ранга и размера группы.
func ForRank(l Logger, rank, size int) Logger {
	if l == nil {
		l = NewNopLogger()
	}
	return l.With("rank", rank, "size", size)
}
