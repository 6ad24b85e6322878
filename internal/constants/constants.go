// Package constants содержит константы, общие для launcher-а и рангов rankmgr.
package constants

// AppName — имя приложения.
const AppName = "rankmgr"

// Информация о сборке. Переопределяется при сборке:
//
//	go build -ldflags "-X github.com/Kargones/rankmgr/internal/constants.Version=1.0.0"
var (
	// Version - версия приложения
	Version = "dev"
	// PreCommitHash - хеш коммита сборки
	PreCommitHash = "unknown"
)

// Переменные окружения, которые launcher передаёт каждому рангу.
const (
	// EnvRank - ранг процесса
	EnvRank = "RM_RANK"
	// EnvSize - размер группы
	EnvSize = "RM_SIZE"
	// EnvAddr - адрес hub
	EnvAddr = "RM_ADDR"
	// EnvTraceID - общий trace ID группы
	EnvTraceID = "RM_TRACE_ID"
)

// Коды завершения.
const (
	// ExitOK - успешное завершение
	ExitOK = 0
	// ExitAbort - abort группы
	ExitAbort = 1
	// ExitUsage - ошибка аргументов командной строки
	ExitUsage = 2
	// ExitConfig - ошибка загрузки конфигурации
	ExitConfig = 5
)

// HubListenAddr — адрес hub по умолчанию: loopback, свободный порт.
const HubListenAddr = "127.0.0.1:0"
