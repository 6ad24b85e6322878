package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
)

// Значения по умолчанию для клиента.
const (
	DefaultDialTimeout  = 10 * time.Second
	DefaultAbortTimeout = 2 * time.Second
)

// Config — параметры подключения ранга к hub.
type Config struct {
	// Rank — ранг текущего процесса.
	Rank int

	// Size — размер группы.
	Size int

	// Addr — адрес hub.
	Addr string

	// DialTimeout — таймаут подключения и рукопожатия.
	DialTimeout time.Duration

	// AbortTimeout — сколько Abort ждёт подтверждения hub перед выходом.
	AbortTimeout time.Duration
}

// Client — членство процесса в группе через hub.
//
// При получении ABORT от hub клиент сразу вызывает exit со статусом группы,
// в каком бы месте ни находился ранг.
type Client struct {
	cfg    Config
	conn   net.Conn
	logger logging.Logger
	exit   func(int)

	wmu sync.Mutex
	w   *bufio.Writer

	release chan struct{}
	lost    chan struct{}

	mu          sync.Mutex
	aborted     bool
	abortStatus int
	finalized   bool
	bye         chan struct{}

	exitOnce sync.Once
}

var _ group.Runtime = (*Client)(nil)

// Join подключается к hub и регистрирует ранг.
// exit вызывается при abort группы; nil означает os.Exit.
func Join(ctx context.Context, cfg Config, logger logging.Logger, exit func(int)) (*Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.AbortTimeout <= 0 {
		cfg.AbortTimeout = DefaultAbortTimeout
	}
	if exit == nil {
		exit = os.Exit
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("tcp: подключение к hub %s: %w", cfg.Addr, err)
	}

	c := &Client{
		cfg:     cfg,
		conn:    conn,
		logger:  logger.With("component", "group", "rank", cfg.Rank),
		exit:    exit,
		w:       bufio.NewWriter(conn),
		release: make(chan struct{}, 1),
		lost:    make(chan struct{}),
		bye:     make(chan struct{}),
	}

	r := bufio.NewReader(conn)
	if err := c.handshake(r); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go c.read(r)
	c.logger.Debug("ранг подключён к hub", "addr", cfg.Addr, "size", cfg.Size)
	return c, nil
}

func (c *Client) handshake(r *bufio.Reader) error {
	_ = c.conn.SetDeadline(time.Now().Add(c.cfg.DialTimeout))
	defer func() { _ = c.conn.SetDeadline(time.Time{}) }()

	if err := c.send(cmdJoin, c.cfg.Rank, c.cfg.Size); err != nil {
		return fmt.Errorf("tcp: отправка JOIN: %w", err)
	}
	line, err := r.ReadString('\n')
	if err != nil {
		return fmt.Errorf("tcp: ответ hub на JOIN: %w", err)
	}
	msg, err := parseMessage(line)
	if err != nil {
		return err
	}
	switch msg.cmd {
	case cmdOK:
		return nil
	case cmdErr:
		return fmt.Errorf("tcp: hub отклонил ранг %d: %s", c.cfg.Rank, strings.Join(msg.args, " "))
	default:
		return fmt.Errorf("%w: ожидался OK, получено %s", ErrProtocol, msg.cmd)
	}
}

// read обрабатывает сообщения hub до разрыва соединения.
func (c *Client) read(r *bufio.Reader) {
	defer close(c.lost)

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			c.mu.Lock()
			finalized := c.finalized
			c.mu.Unlock()
			if !finalized {
				c.logger.Error("потеряно соединение с hub", "error", err.Error())
			}
			return
		}
		msg, err := parseMessage(line)
		if err != nil {
			c.logger.Warn("некорректная строка от hub", "error", err.Error())
			continue
		}

		switch msg.cmd {
		case cmdRelease:
			c.release <- struct{}{}
		case cmdAbort:
			status, err := msg.intArg(0)
			if err != nil {
				status = group.ExitFailure
			}
			c.mu.Lock()
			c.aborted = true
			c.abortStatus = status
			c.mu.Unlock()
			c.logger.Warn("группа завершается через abort", "status", status)
			c.terminate(status)
			return
		case cmdBye:
			close(c.bye)
			return
		default:
			c.logger.Warn("неизвестная команда hub", "command", msg.cmd)
		}
	}
}

func (c *Client) send(cmd string, args ...any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return writeLine(c.w, cmd, args...)
}

func (c *Client) terminate(status int) {
	c.exitOnce.Do(func() { c.exit(status) })
}

// Rank возвращает ранг процесса.
func (c *Client) Rank() int { return c.cfg.Rank }

// Size возвращает размер группы.
func (c *Client) Size() int { return c.cfg.Size }

// Barrier отправляет BARRIER и ждёт RELEASE от hub.
func (c *Client) Barrier() error {
	c.mu.Lock()
	finalized, aborted := c.finalized, c.aborted
	c.mu.Unlock()
	if finalized {
		return group.ErrFinalized
	}
	if aborted {
		return group.ErrAborted
	}

	if err := c.send(cmdBarrier); err != nil {
		return fmt.Errorf("%w: %v", group.ErrConnectionLost, err)
	}

	select {
	case <-c.release:
		return nil
	case <-c.lost:
		// RELEASE мог прийти перед разрывом
		select {
		case <-c.release:
			return nil
		default:
		}
		c.mu.Lock()
		aborted = c.aborted
		c.mu.Unlock()
		if aborted {
			return group.ErrAborted
		}
		return group.ErrConnectionLost
	}
}

// Abort сообщает hub об abort, ждёт рассылки и завершает процесс со статусом status.
func (c *Client) Abort(status int) {
	if err := c.send(cmdAbort, status); err != nil {
		c.logger.Warn("не удалось сообщить hub об abort", "error", err.Error())
	} else {
		select {
		case <-c.lost:
		case <-time.After(c.cfg.AbortTimeout):
		}
	}
	_ = c.conn.Close()

	// если abort уже пришёл от hub, статус группы определён первым abort
	c.mu.Lock()
	if c.aborted {
		status = c.abortStatus
	}
	c.mu.Unlock()

	c.terminate(status)
	runtime.Goexit()
}

// Finalize сообщает hub о завершении ранга и закрывает соединение.
func (c *Client) Finalize() error {
	c.mu.Lock()
	if c.finalized {
		c.mu.Unlock()
		return group.ErrFinalized
	}
	c.finalized = true
	c.mu.Unlock()

	defer c.conn.Close()

	if err := c.send(cmdFinalize); err != nil {
		return fmt.Errorf("%w: %v", group.ErrConnectionLost, err)
	}
	select {
	case <-c.bye:
		return nil
	case <-c.lost:
		select {
		case <-c.bye:
			return nil
		default:
		}
		return group.ErrConnectionLost
	case <-time.After(c.cfg.DialTimeout):
		return fmt.Errorf("%w: hub не подтвердил FINALIZE", group.ErrConnectionLost)
	}
}
