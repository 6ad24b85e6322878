package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/pkg/logging"

	"github.com/sourcegraph/conc"
)

// Hub — точка синхронизации группы из size рангов.
type Hub struct {
	size     int
	listener net.Listener
	logger   logging.Logger

	mu        sync.Mutex
	peers     map[int]*peer
	waiting   map[int]bool
	finalized map[int]bool
	aborted   bool
	status    int
	done      chan struct{}
	doneOnce  sync.Once
	closed    bool

	handlers conc.WaitGroup
}

// peer — подключённый ранг.
type peer struct {
	rank int
	conn net.Conn

	mu sync.Mutex
	w  *bufio.Writer
}

func (p *peer) send(cmd string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return writeLine(p.w, cmd, args...)
}

// Listen открывает hub на addr для группы из size рангов.
// addr вида "127.0.0.1:0" выбирает свободный порт, см. Addr.
func Listen(addr string, size int, logger logging.Logger) (*Hub, error) {
	if size < 1 {
		return nil, fmt.Errorf("tcp: размер группы должен быть положительным, получено %d", size)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp: не удалось открыть %s: %w", addr, err)
	}
	return &Hub{
		size:      size,
		listener:  ln,
		logger:    logger.With("component", "hub", "size", size),
		peers:     make(map[int]*peer, size),
		waiting:   make(map[int]bool, size),
		finalized: make(map[int]bool, size),
		done:      make(chan struct{}),
	}, nil
}

// Addr возвращает фактический адрес hub.
func (h *Hub) Addr() string { return h.listener.Addr().String() }

// Size возвращает размер группы.
func (h *Hub) Size() int { return h.size }

// Done закрывается, когда группа завершена: все ранги финализированы или был abort.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Status возвращает статус abort и признак того, что abort был.
func (h *Hub) Status() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.aborted
}

// Serve принимает подключения рангов до отмены ctx или Close.
func (h *Hub) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = h.Close() })
	defer stop()

	h.logger.Debug("hub принимает подключения", "addr", h.Addr())
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			if h.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("tcp: accept: %w", err)
		}
		h.handlers.Go(func() { h.handle(conn) })
	}
}

// Close закрывает listener и все соединения, ждёт обработчики.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conns := make([]net.Conn, 0, len(h.peers))
	for _, p := range h.peers {
		conns = append(conns, p.conn)
	}
	h.mu.Unlock()

	err := h.listener.Close()
	for _, c := range conns {
		_ = c.Close()
	}
	h.handlers.Wait()
	return err
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Hub) handle(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	p, err := h.join(conn, r)
	if err != nil {
		h.logger.Warn("отклонено подключение", "remote", conn.RemoteAddr().String(), "error", err.Error())
		_ = writeLine(bufio.NewWriter(conn), cmdErr, err.Error())
		return
	}
	log := h.logger.With("rank", p.rank)
	log.Debug("ранг подключён")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			h.lost(p, err)
			return
		}
		msg, err := parseMessage(line)
		if err != nil {
			log.Warn("некорректная строка", "error", err.Error())
			continue
		}

		switch msg.cmd {
		case cmdBarrier:
			h.barrier(p)
		case cmdAbort:
			status, err := msg.intArg(0)
			if err != nil {
				status = group.ExitFailure
			}
			log.Warn("ранг запросил abort группы", "status", status)
			h.abort(status)
		case cmdFinalize:
			h.finalize(p)
			_ = p.send(cmdBye)
			return
		default:
			log.Warn("неизвестная команда", "command", msg.cmd)
		}
	}
}

// join читает JOIN и регистрирует ранг.
func (h *Hub) join(conn net.Conn, r *bufio.Reader) (*peer, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("чтение JOIN: %w", err)
	}
	msg, err := parseMessage(line)
	if err != nil {
		return nil, err
	}
	if msg.cmd != cmdJoin {
		return nil, fmt.Errorf("%w: ожидался JOIN, получено %s", ErrProtocol, msg.cmd)
	}
	rank, err := msg.intArg(0)
	if err != nil {
		return nil, err
	}
	size, err := msg.intArg(1)
	if err != nil {
		return nil, err
	}
	if size != h.size {
		return nil, fmt.Errorf("размер группы %d не совпадает с hub (%d)", size, h.size)
	}
	if rank < 0 || rank >= h.size {
		return nil, fmt.Errorf("ранг %d вне диапазона 0..%d", rank, h.size-1)
	}

	p := &peer{rank: rank, conn: conn, w: bufio.NewWriter(conn)}

	h.mu.Lock()
	if _, dup := h.peers[rank]; dup || h.finalized[rank] {
		h.mu.Unlock()
		return nil, fmt.Errorf("ранг %d уже подключён", rank)
	}
	if h.closed {
		h.mu.Unlock()
		return nil, errors.New("hub закрыт")
	}
	aborted, status := h.aborted, h.status
	h.peers[rank] = p
	h.mu.Unlock()

	if err := p.send(cmdOK); err != nil {
		return nil, err
	}
	// поздно подключившийся ранг узнаёт об abort сразу
	if aborted {
		_ = p.send(cmdAbort, status)
	}
	return p, nil
}

func (h *Hub) barrier(p *peer) {
	h.mu.Lock()
	if h.aborted {
		h.mu.Unlock()
		return
	}
	h.waiting[p.rank] = true
	if len(h.waiting) < h.size {
		h.mu.Unlock()
		return
	}
	clear(h.waiting)
	targets := h.peerList()
	h.mu.Unlock()

	for _, t := range targets {
		if err := t.send(cmdRelease); err != nil {
			h.logger.Warn("не удалось отпустить барьер", "rank", t.rank, "error", err.Error())
		}
	}
}

// abort рассылает ABORT всем рангам. Первый abort определяет статус.
func (h *Hub) abort(status int) {
	h.mu.Lock()
	if h.aborted {
		h.mu.Unlock()
		return
	}
	h.aborted = true
	h.status = status
	targets := h.peerList()
	h.mu.Unlock()

	h.logger.Error("abort группы", "status", status)
	for _, t := range targets {
		_ = t.send(cmdAbort, status)
	}
	h.finish()
}

func (h *Hub) finalize(p *peer) {
	h.mu.Lock()
	h.finalized[p.rank] = true
	delete(h.peers, p.rank)
	delete(h.waiting, p.rank)
	all := len(h.finalized) == h.size
	h.mu.Unlock()

	h.logger.Debug("ранг финализирован", "rank", p.rank)
	if all {
		h.finish()
	}
}

// lost обрабатывает разрыв соединения ранга без FINALIZE.
func (h *Hub) lost(p *peer, err error) {
	h.mu.Lock()
	delete(h.peers, p.rank)
	closing := h.closed
	h.mu.Unlock()

	if closing {
		return
	}
	h.logger.Error("потеряно соединение с рангом", "rank", p.rank, "error", err.Error())
	h.abort(group.ExitFailure)
}

func (h *Hub) finish() {
	h.doneOnce.Do(func() { close(h.done) })
}

// peerList возвращает подключённые ранги. Вызывается под h.mu.
func (h *Hub) peerList() []*peer {
	out := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		out = append(out, p)
	}
	return out
}

// String описывает состояние hub для диагностики.
func (h *Hub) String() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "hub %s: подключено %d/%d, финализировано %d", h.Addr(), len(h.peers), h.size, len(h.finalized))
	if h.aborted {
		fmt.Fprintf(&b, ", abort %d", h.status)
	}
	return b.String()
}
