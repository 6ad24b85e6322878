// Package grouptest содержит test double для group.Runtime.
package grouptest

import (
	"runtime"
	"sync"

	"github.com/Kargones/rankmgr/internal/group"
)

// Recorder — group.Runtime, который не синхронизирует ничего,
// а только записывает вызовы. Позволяет проверять протоколы
// координатора в одном процессе для любого ранга и размера группы.
type Recorder struct {
	// BarrierErr возвращается из Barrier, если задан.
	BarrierErr error

	// FinalizeErr возвращается из Finalize, если задан.
	FinalizeErr error

	// OnBarrier вызывается перед возвратом из Barrier, если задан.
	OnBarrier func(call int)

	rank int
	size int

	mu          sync.Mutex
	barriers    int
	finalized   int
	aborted     bool
	abortStatus int
}

var _ group.Runtime = (*Recorder)(nil)

// NewRecorder создаёт Recorder для ранга rank в группе размера size.
func NewRecorder(rank, size int) *Recorder {
	return &Recorder{rank: rank, size: size}
}

// Rank возвращает заданный ранг.
func (r *Recorder) Rank() int { return r.rank }

// Size возвращает заданный размер группы.
func (r *Recorder) Size() int { return r.size }

// Barrier записывает вызов.
func (r *Recorder) Barrier() error {
	r.mu.Lock()
	r.barriers++
	call := r.barriers
	r.mu.Unlock()

	if r.OnBarrier != nil {
		r.OnBarrier(call)
	}
	return r.BarrierErr
}

// Abort записывает статус и останавливает вызывающую горутину.
// Тесты должны вызывать Abort координатора в отдельной горутине.
func (r *Recorder) Abort(status int) {
	r.mu.Lock()
	r.aborted = true
	r.abortStatus = status
	r.mu.Unlock()
	runtime.Goexit()
}

// Finalize записывает вызов.
func (r *Recorder) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized++
	return r.FinalizeErr
}

// Barriers возвращает число вызовов Barrier.
func (r *Recorder) Barriers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.barriers
}

// Finalized возвращает число вызовов Finalize.
func (r *Recorder) Finalized() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// Aborted возвращает, был ли Abort, и его статус.
func (r *Recorder) Aborted() (bool, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aborted, r.abortStatus
}

// RunAbort выполняет fn в отдельной горутине и ждёт её завершения.
// Нужен для вызовов, которые заканчиваются Abort (runtime.Goexit).
func RunAbort(fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}
