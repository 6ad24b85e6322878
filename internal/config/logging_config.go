package config

import (
	"fmt"

	"github.com/Kargones/rankmgr/internal/pkg/logging"
)

// LoggingConfig содержит настройки диагностического лога.
// Значения по умолчанию совпадают с logging.DefaultXxx.
type LoggingConfig struct {
	// Level - уровень логирования (debug, info, warn, error)
	Level string `yaml:"level" env:"RM_LOG_LEVEL" env-default:"warn"`

	// Format - формат логов (json, text)
	Format string `yaml:"format" env:"RM_LOG_FORMAT" env-default:"text"`

	// Output - вывод логов (stderr, file)
	Output string `yaml:"output" env:"RM_LOG_OUTPUT" env-default:"stderr"`

	// FilePath - путь к файлу логов, может содержать {rank}
	FilePath string `yaml:"filePath" env:"RM_LOG_FILE_PATH" env-default:"/var/log/rankmgr/rank-{rank}.log"`

	// MaxSize - максимальный размер файла лога в MB
	MaxSize int `yaml:"maxSize" env:"RM_LOG_MAX_SIZE" env-default:"50"`

	// MaxBackups - максимальное количество backup файлов
	MaxBackups int `yaml:"maxBackups" env:"RM_LOG_MAX_BACKUPS" env-default:"3"`

	// MaxAge - максимальный возраст backup файлов в днях
	MaxAge int `yaml:"maxAge" env:"RM_LOG_MAX_AGE" env-default:"7"`

	// Compress - сжимать ли backup файлы.
	// Без env-default: cleanenv перезаписал бы yaml false значением по умолчанию.
	Compress bool `yaml:"compress" env:"RM_LOG_COMPRESS"`
}

func (l LoggingConfig) validate() error {
	switch l.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("неизвестный уровень лога %q", l.Level)
	}
	switch l.Format {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("неизвестный формат лога %q", l.Format)
	}
	switch l.Output {
	case logging.OutputStderr:
	case logging.OutputFile:
		if l.FilePath == "" {
			return fmt.Errorf("для output=file нужен filePath")
		}
	default:
		return fmt.Errorf("неизвестный вывод лога %q", l.Output)
	}
	return nil
}

// ToLogging преобразует настройки в logging.Config для ранга rank.
func (l LoggingConfig) ToLogging(rank int) logging.Config {
	return logging.Config{
		Level:      l.Level,
		Format:     l.Format,
		Output:     l.Output,
		FilePath:   l.FilePath,
		Rank:       rank,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
		Compress:   l.Compress,
	}
}
