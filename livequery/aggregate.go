// Package livequery реализует паттерн "подписка → инвалидация →
// перечитывание → пересчёт производных метрик": Channel владеет
// подпиской на ленту изменений одной таблицы, Binding связывает канал
// с состоянием экрана, а агрегатные функции считают производные
// значения по свежевыбранным строкам.
package livequery

import "time"

// CountByForeignKey группирует строки по внешнему ключу и считает
// количество в каждой группе. keyOf отдаёт значение ключа строки,
// include (может быть nil) отсекает строки, не проходящие фильтр
// статуса. Группы без единой подходящей строки в карте отсутствуют —
// вызывающий обязан трактовать отсутствие как ноль.
func CountByForeignKey[T any](rows []T, keyOf func(T) string, include func(T) bool) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		if include != nil && !include(row) {
			continue
		}
		counts[keyOf(row)]++
	}
	return counts
}

// WinRate возвращает процент побед. При matchesPlayed == 0 всегда 0,
// независимо от wins. Результат не округляется: точность отображения —
// забота слоя представления.
func WinRate(wins, matchesPlayed int) float64 {
	if matchesPlayed == 0 {
		return 0
	}
	return float64(wins) / float64(matchesPlayed) * 100
}

// TotalPoints — сумма очков выживания и очков за килы.
func TotalPoints(survivalPoints, killPoints int) int {
	return survivalPoints + killPoints
}

// MonthBucket — одна корзина графика активности.
type MonthBucket struct {
	Label string
	Count int
}

// BucketByMonth раскладывает строки по календарным месяцам: months
// последних месяцев, включая текущий месяц now, в локальной временной
// зоне. Месяц без строк присутствует в результате с нулём, а не
// пропускается. Строки вне окна игнорируются.
func BucketByMonth[T any](rows []T, dateOf func(T) time.Time, now time.Time, months int) []MonthBucket {
	if months <= 0 {
		return nil
	}

	type yearMonth struct {
		year  int
		month time.Month
	}

	buckets := make([]MonthBucket, months)
	index := make(map[yearMonth]int, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		buckets[i] = MonthBucket{Label: m.Format("Jan")}
		index[yearMonth{m.Year(), m.Month()}] = i
	}

	for _, row := range rows {
		d := dateOf(row).In(now.Location())
		if i, ok := index[yearMonth{d.Year(), d.Month()}]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}
