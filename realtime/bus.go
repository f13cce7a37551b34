package realtime

import (
	"sync"
)

// Action описывает тип изменения в таблице.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event — уведомление "в таблице что-то изменилось". Полезной нагрузке
// подписчики не доверяют: по контракту они всегда перечитывают данные,
// а не применяют содержимое события.
type Event struct {
	Table  string `json:"table"`
	Action Action `json:"action"`
	// FilterKey — значение внешнего ключа (tournament_id), по которому
	// подписка может быть сужена. Пустая строка — событие без фильтра.
	FilterKey string `json:"filter_key,omitempty"`
	// EntityID изменённой строки. Только для логов и отладки.
	EntityID string `json:"entity_id,omitempty"`
}

// Subscription — живая подписка на изменения одной таблицы.
type Subscription struct {
	bus    *Bus
	id     uint64
	events chan Event

	mu     sync.Mutex
	closed bool
}

// Events отдаёт канал уведомлений. Канал буферизован на одно событие:
// серия изменений подряд сворачивается в одно пробуждение.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close отписывается. Безопасен при повторных вызовах.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.bus.remove(s)
}

type subscriber struct {
	table     string
	filterKey string // "" — вся таблица
	sub       *Subscription
}

// Bus — внутрипроцессная лента изменений: сервисы публикуют события
// после каждой успешной записи, подписчики (live query каналы и
// websocket-хаб) получают пробуждение.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscriber)}
}

// Subscribe регистрирует подписку на таблицу. Непустой filterKey сужает
// подписку до строк с этим значением внешнего ключа: события с другим
// ключом не доставляются (серверное исполнение фильтра).
func (b *Bus) Subscribe(table, filterKey string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		bus:    b,
		id:     b.nextID,
		events: make(chan Event, 1),
	}
	b.subs[sub.id] = subscriber{table: table, filterKey: filterKey, sub: sub}
	return sub
}

// Publish рассылает событие всем подходящим подпискам. Если канал
// подписчика уже содержит непрочитанное событие, новое отбрасывается:
// одного пробуждения на серию изменений достаточно, подписчик всё равно
// перечитает состояние целиком.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		if s.table != event.Table {
			continue
		}
		if s.filterKey != "" && event.FilterKey != "" && s.filterKey != event.FilterKey {
			continue
		}
		select {
		case s.sub.events <- event:
		default:
		}
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
	// Publish держит RLock на всё время рассылки, поэтому после удаления
	// под полным Lock отправок в этот канал больше не будет.
	close(sub.events)
}
