package logging

import (
	"strconv"
	"strings"
)

// Поддерживаемые форматы диагностического лога.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Поддерживаемые уровни диагностического лога.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Поддерживаемые типы вывода.
// stdout отсутствует намеренно: stdout занят строками координатора.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// RankPlaceholder подставляется в FilePath номером ранга,
// чтобы процессы группы не делили один файл с ротацией.
const RankPlaceholder = "{rank}"

// Значения по умолчанию для Config.
const (
	DefaultLevel      = LevelWarn
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/rankmgr/rank-" + RankPlaceholder + ".log"
	DefaultMaxSize    = 50 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // days
	DefaultCompress   = true
)

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// Config содержит настройки диагностического логирования.
type Config struct {
	// Format: "json" или "text". По умолчанию "text".
	Format string

	// Level: "debug", "info", "warn", "error". По умолчанию "warn".
	Level string

	// Output: "stderr" или "file". По умолчанию "stderr".
	Output string

	// FilePath — путь к файлу при Output="file".
	// Может содержать RankPlaceholder.
	FilePath string

	// Rank подставляется вместо RankPlaceholder в FilePath.
	Rank int

	// MaxSize — размер файла в MB до ротации.
	MaxSize int

	// MaxBackups — количество backup файлов.
	MaxBackups int

	// MaxAge — возраст backup файлов в днях.
	MaxAge int

	// Compress — сжимать ли backup файлы в gzip.
	Compress bool
}

// RankFilePath возвращает FilePath с подставленным номером ранга.
func (c Config) RankFilePath() string {
	return strings.ReplaceAll(c.FilePath, RankPlaceholder, strconv.Itoa(c.Rank))
}
