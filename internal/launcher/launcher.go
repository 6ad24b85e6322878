// Package launcher запускает группу из N процессов одной команды:
// поднимает hub, передаёт каждому процессу ранг через окружение
// и ждёт завершения всех.
//
// Все ранги пишут в один общий stdout, поэтому строки, выведенные
// до и после барьера, не переставляются между процессами.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/Kargones/rankmgr/internal/constants"
	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/group/tcp"
	"github.com/Kargones/rankmgr/internal/pkg/apperrors"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/pkg/tracing"

	"github.com/sourcegraph/conc"
)

// DefaultKillGrace — сколько ждать добровольного выхода рангов после abort.
const DefaultKillGrace = 2 * time.Second

// Options — параметры запуска группы.
type Options struct {
	// Size — число процессов.
	Size int

	// Command — команда и аргументы, запускаемые на каждом ранге.
	Command []string

	// Env — окружение процессов. nil означает os.Environ().
	Env []string

	// Stdout и Stderr общие для всех рангов. nil означает os.Stdout и os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// HubAddr — адрес hub. Пусто означает constants.HubListenAddr.
	HubAddr string

	// TraceID — общий trace ID. Пусто означает новый.
	TraceID string

	// KillGrace — пауза между abort и принудительным завершением рангов.
	KillGrace time.Duration
}

// Result — итог выполнения группы.
type Result struct {
	// Status — код завершения группы: статус abort или первый ненулевой код ранга.
	Status int

	// Aborted — группа завершилась через abort.
	Aborted bool

	// ExitCodes — коды завершения по рангам. -1 — процесс убит сигналом.
	ExitCodes []int

	// TraceID — trace ID, переданный рангам.
	TraceID string
}

// rankProcess — запущенный ранг.
type rankProcess struct {
	rank int
	cmd  *exec.Cmd
	done chan struct{}
}

// Run запускает группу и блокируется до завершения всех рангов.
func Run(ctx context.Context, opts Options, logger logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Size < 1 {
		return nil, apperrors.NewAppError(apperrors.ErrLaunchSpawn,
			fmt.Sprintf("число процессов должно быть положительным, получено %d", opts.Size), nil)
	}
	if len(opts.Command) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrLaunchSpawn, "не указана команда", nil)
	}
	opts = withDefaults(opts)
	log := logger.With("component", "launcher", "size", opts.Size)

	hub, err := tcp.Listen(opts.HubAddr, opts.Size, logger)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrLaunchHub, "не удалось запустить hub", err)
	}
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		if err := hub.Serve(hubCtx); err != nil {
			log.Error("hub завершился с ошибкой", "error", err.Error())
		}
	}()
	defer func() {
		stopHub()
		<-hubDone
	}()

	stdout, waitStdout, err := sharedFile(opts.Stdout)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrLaunchSpawn, "не удалось подготовить stdout", err)
	}
	stderr, waitStderr, err := sharedFile(opts.Stderr)
	if err != nil {
		_ = waitStdout()
		return nil, apperrors.NewAppError(apperrors.ErrLaunchSpawn, "не удалось подготовить stderr", err)
	}

	log.Info("запуск группы", "command", opts.Command[0], "hub", hub.Addr(), "trace_id", opts.TraceID)

	procs := make([]*rankProcess, 0, opts.Size)
	for rank := range opts.Size {
		p, err := start(ctx, opts, rank, hub.Addr(), stdout, stderr)
		if err != nil {
			for _, started := range procs {
				_ = started.cmd.Process.Kill()
				_ = started.cmd.Wait()
			}
			_ = waitStdout()
			_ = waitStderr()
			return nil, apperrors.NewAppError(apperrors.ErrLaunchSpawn,
				fmt.Sprintf("не удалось запустить ранг %d", rank), err)
		}
		procs = append(procs, p)
	}

	res := &Result{ExitCodes: make([]int, opts.Size), TraceID: opts.TraceID}
	allDone := make(chan struct{})

	var wg conc.WaitGroup
	for _, p := range procs {
		wg.Go(func() {
			defer close(p.done)
			res.ExitCodes[p.rank] = exitCode(p.cmd.Wait())
			log.Debug("ранг завершился", "rank", p.rank, "exit_code", res.ExitCodes[p.rank])
		})
	}
	wg.Go(func() { killAfterAbort(hub, procs, opts.KillGrace, allDone, log) })

	waitAll(procs)
	close(allDone)
	wg.Wait()

	if err := waitStdout(); err != nil {
		log.Warn("ошибка копирования stdout", "error", err.Error())
	}
	if err := waitStderr(); err != nil {
		log.Warn("ошибка копирования stderr", "error", err.Error())
	}

	if status, aborted := hub.Status(); aborted {
		res.Aborted = true
		res.Status = status
	} else {
		res.Status = firstFailure(res.ExitCodes)
	}
	log.Info("группа завершена", "status", res.Status, "aborted", res.Aborted)
	return res, nil
}

func withDefaults(opts Options) Options {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.HubAddr == "" {
		opts.HubAddr = constants.HubListenAddr
	}
	if opts.TraceID == "" {
		opts.TraceID = tracing.GenerateTraceID()
	}
	if opts.KillGrace <= 0 {
		opts.KillGrace = DefaultKillGrace
	}
	return opts
}

// RankEnv возвращает переменные окружения ранга rank.
func RankEnv(rank, size int, addr, traceID string) []string {
	return []string{
		constants.EnvRank + "=" + strconv.Itoa(rank),
		constants.EnvSize + "=" + strconv.Itoa(size),
		constants.EnvAddr + "=" + addr,
		constants.EnvTraceID + "=" + traceID,
	}
}

func start(ctx context.Context, opts Options, rank int, addr string, stdout, stderr *os.File) (*rankProcess, error) {
	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	env := make([]string, 0, len(opts.Env)+4)
	env = append(env, opts.Env...)
	cmd.Env = append(env, RankEnv(rank, opts.Size, addr, opts.TraceID)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &rankProcess{rank: rank, cmd: cmd, done: make(chan struct{})}, nil
}

// killAfterAbort завершает оставшиеся ранги, если после abort группы
// они не вышли сами за grace.
func killAfterAbort(hub *tcp.Hub, procs []*rankProcess, grace time.Duration, allDone <-chan struct{}, log logging.Logger) {
	select {
	case <-allDone:
		return
	case <-hub.Done():
	}
	if _, aborted := hub.Status(); !aborted {
		return
	}

	select {
	case <-allDone:
		return
	case <-time.After(grace):
	}
	for _, p := range procs {
		select {
		case <-p.done:
		default:
			log.Warn("ранг не завершился после abort, принудительное завершение", "rank", p.rank)
			_ = p.cmd.Process.Kill()
		}
	}
}

func waitAll(procs []*rankProcess) {
	for _, p := range procs {
		<-p.done
	}
}

func exitCode(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func firstFailure(codes []int) int {
	for _, c := range codes {
		switch {
		case c == constants.ExitOK:
		case c < 0:
			return group.ExitFailure
		default:
			return c
		}
	}
	return constants.ExitOK
}

// sharedFile возвращает файл, который можно отдать всем рангам.
// *os.File передаётся как есть. Для прочих writer-ов создаётся один общий
// pipe: порядок записей разных процессов в нём сохраняется.
// wait закрывает pipe и ждёт окончания копирования.
func sharedFile(w io.Writer) (*os.File, func() error, error) {
	if f, ok := w.(*os.File); ok {
		return f, func() error { return nil }, nil
	}

	r, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	var copyErr error
	var copied sync.WaitGroup
	copied.Add(1)
	go func() {
		defer copied.Done()
		_, copyErr = io.Copy(w, r)
		_ = r.Close()
	}()

	var once sync.Once
	wait := func() error {
		once.Do(func() {
			_ = pw.Close()
			copied.Wait()
		})
		return copyErr
	}
	return pw, wait, nil
}
