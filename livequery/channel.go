package livequery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/esports-arena/tournament-hub/realtime"
)

// Channel держит ровно одну подписку на пару (таблица, фильтр) и
// гарантирует, что любой insert/update/delete в таблице приведёт к
// вызову onChange. Серия событий подряд сворачивается в один вызов:
// буфер подписки — одно событие, и подписчик перечитывает состояние
// целиком, так что пропущенные промежуточные события неотличимы.
type Channel struct {
	table string
	sub   *realtime.Subscription
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// Open подписывает onChange на изменения таблицы. Непустой filterKey
// сужает подписку до одного значения внешнего ключа — события с другим
// ключом отфильтровываются на стороне шины и onChange не вызывают.
// Канал живёт до Close.
func Open(bus *realtime.Bus, table, filterKey string, onChange func()) *Channel {
	c := &Channel{
		table: table,
		sub:   bus.Subscribe(table, filterKey),
		done:  make(chan struct{}),
	}
	go c.loop(onChange)
	return c
}

func (c *Channel) loop(onChange func()) {
	for {
		select {
		case <-c.done:
			return
		case _, ok := <-c.sub.Events():
			if !ok {
				return
			}
			// Ещё раз проверяем закрытие: событие могло прийти
			// одновременно с Close, и тогда вызывать onChange уже нельзя.
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			onChange()
		}
	}
}

// Close отписывается от шины. Безопасен при повторных вызовах; после
// возврата новых вызовов onChange не будет.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.sub.Close()
}

// FetchFunc перечитывает строки таблицы целиком. Результат полностью
// замещает предыдущее состояние — никогда не сливается с ним.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// logFetchError — единая точка деградации: ошибка перечитывания
// логируется, последнее хорошее состояние остаётся на месте,
// автоматических повторов нет.
func logFetchError(logger *slog.Logger, table string, err error) {
	if logger == nil {
		return
	}
	logger.Error("live query refetch failed, keeping last known state",
		slog.String("table", table),
		slog.Any("error", err),
	)
}
