// Package local реализует группу процессов внутри одного процесса:
// каждый ранг — горутина, барьер — общий счётчик поколений.
//
// Abort помечает группу завершённой и останавливает вызывающую горутину
// через runtime.Goexit. Ранги, ожидающие на барьере или пришедшие к нему
// позже, получают group.ErrAborted. Ранг, который больше не синхронизируется,
// доработает до конца: прервать чужую горутину снаружи нельзя.
package local

import (
	"runtime"
	"sync"

	"github.com/Kargones/rankmgr/internal/group"

	"github.com/sourcegraph/conc"
)

// Group — общее состояние группы рангов.
type Group struct {
	size int

	mu         sync.Mutex
	cond       *sync.Cond
	arrived    int
	generation uint64
	aborted    bool
	status     int
	done       chan struct{}
}

// New создаёт группу из size рангов. size меньше 1 приводится к 1.
func New(size int) *Group {
	if size < 1 {
		size = 1
	}
	g := &Group{size: size, done: make(chan struct{})}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Size возвращает размер группы.
func (g *Group) Size() int { return g.size }

// Member возвращает runtime для ранга rank.
func (g *Group) Member(rank int) group.Runtime {
	return &member{g: g, rank: rank}
}

// Done закрывается при abort группы.
func (g *Group) Done() <-chan struct{} { return g.done }

// Status возвращает статус abort (0 если abort не было).
func (g *Group) Status() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Aborted сообщает, был ли abort.
func (g *Group) Aborted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aborted
}

func (g *Group) barrier() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.aborted {
		return group.ErrAborted
	}

	gen := g.generation
	g.arrived++
	if g.arrived == g.size {
		g.arrived = 0
		g.generation++
		g.cond.Broadcast()
		return nil
	}

	for gen == g.generation && !g.aborted {
		g.cond.Wait()
	}
	if gen == g.generation {
		return group.ErrAborted
	}
	return nil
}

func (g *Group) abort(status int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	// первый abort определяет статус группы
	if g.aborted {
		return
	}
	g.aborted = true
	g.status = status
	close(g.done)
	g.cond.Broadcast()
}

type member struct {
	g         *Group
	rank      int
	finalized bool
}

func (m *member) Rank() int { return m.rank }

func (m *member) Size() int { return m.g.size }

func (m *member) Barrier() error {
	if m.finalized {
		return group.ErrFinalized
	}
	return m.g.barrier()
}

func (m *member) Abort(status int) {
	m.g.abort(status)
	runtime.Goexit()
}

func (m *member) Finalize() error {
	if m.finalized {
		return group.ErrFinalized
	}
	m.finalized = true
	return nil
}

// Run запускает fn на каждом из size рангов и ждёт завершения всех.
// Возвращает статус abort группы или 0.
// Паника в любом ранге пробрасывается вызывающему после завершения остальных.
func Run(size int, fn func(rt group.Runtime)) int {
	g := New(size)

	var wg conc.WaitGroup
	for rank := range g.size {
		rt := g.Member(rank)
		wg.Go(func() { fn(rt) })
	}
	wg.Wait()

	return g.Status()
}
