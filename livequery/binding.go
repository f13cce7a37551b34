package livequery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/esports-arena/tournament-hub/realtime"
)

// State — состояние привязки экрана к данным.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
	StateClosed  State = "closed"
)

// Binding — единственный владелец Channel для одного экрана: связывает
// перечитывание, агрегирование и состояние рендера. Наружу отдаёт
// только Snapshot() — ни канал, ни прямой доступ к выборке.
//
// Переходы: idle → loading → ready при старте; ready → loading → ready
// на каждое уведомление или ручной Refresh; ready → error → ready при
// ошибке перечитывания (последние хорошие данные сохраняются); closed —
// терминальное, после него переходов нет.
type Binding[T any] struct {
	table   string
	fetch   FetchFunc[T]
	channel *Channel
	logger  *slog.Logger

	mu      sync.Mutex
	state   State
	data    []T
	lastErr error
}

// Snapshot — срез состояния для слоя рендера: данные, флаг загрузки,
// последняя ошибка. Ошибка транзиентна: следующий удачный refetch её
// стирает.
type Snapshot[T any] struct {
	Data    []T
	Loading bool
	Err     error
}

// Bind открывает привязку: выполняет первоначальную загрузку и
// подписывает перечитывание на изменения таблицы. Непустой filterKey
// сужает подписку (например, матчи одного турнира).
func Bind[T any](ctx context.Context, bus *realtime.Bus, table, filterKey string, fetch FetchFunc[T], logger *slog.Logger) *Binding[T] {
	b := &Binding[T]{
		table:  table,
		fetch:  fetch,
		logger: logger,
		state:  StateIdle,
	}
	b.channel = Open(bus, table, filterKey, func() {
		b.refresh(context.Background())
	})
	b.refresh(ctx)
	return b
}

// Refresh перечитывает данные вручную, вне событий подписки.
func (b *Binding[T]) Refresh(ctx context.Context) {
	b.refresh(ctx)
}

// refresh выполняет выборку без удержания мьютекса: параллельные
// перечитывания не блокируют друг друга, последний разрешившийся ответ
// полностью замещает данные. Повторный вызов без изменений в хранилище
// обязан дать идентичный результат.
func (b *Binding[T]) refresh(ctx context.Context) {
	b.mu.Lock()
	if b.state == StateClosed {
		b.mu.Unlock()
		return
	}
	b.state = StateLoading
	b.mu.Unlock()

	rows, err := b.fetch(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	// Выборка могла разрешиться после Close — результат отбрасывается,
	// чтобы не писать состояние в размонтированную привязку.
	if b.state == StateClosed {
		return
	}
	if err != nil {
		b.state = StateError
		b.lastErr = err
		logFetchError(b.logger, b.table, err)
		return
	}
	b.state = StateReady
	b.lastErr = nil
	b.data = rows
}

func (b *Binding[T]) Snapshot() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot[T]{
		Data:    b.data,
		Loading: b.state == StateLoading || b.state == StateIdle,
		Err:     b.lastErr,
	}
}

// State отдаёт текущее состояние машины (для тестов и диагностики).
func (b *Binding[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Close переводит привязку в терминальное состояние и освобождает
// канал. Вызывается при размонтировании экрана; повторные вызовы
// безопасны.
func (b *Binding[T]) Close() {
	b.mu.Lock()
	b.state = StateClosed
	b.mu.Unlock()
	b.channel.Close()
}
