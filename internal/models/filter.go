package models

import "time"

// DateWindowKind は by_date パラメータの種別です。
type DateWindowKind int

const (
	// DateWindowToday は今日の終わりまでを上限にします。
	DateWindowToday DateWindowKind = iota
	// DateWindowTomorrow は明日の終わりまでを上限にします。
	DateWindowTomorrow
	// DateWindowWeek は WeekWindowDays 日後の終わりまでを上限にします。
	DateWindowWeek
	// DateWindowLiteral は指定日の終わりまでを上限にします。
	DateWindowLiteral
	// DateWindowNoDeadline は「締め切りなし」のTodoだけを対象にします。
	DateWindowNoDeadline
)

// WeekWindowDays は by_date=week のオフセット日数です。
// 過去の実装には6日と7日の両方があり、ここでは「1週間後」の自然な読みで
// 7日に固定しています。
const WeekWindowDays = 7

// DateWindow は締め切りの絞り込み条件を表します。
// OnlyOneDay が真の場合、「対象日の終わりまで」ではなく
// 「対象日のその日だけ」に絞り込みます。
type DateWindow struct {
	Kind       DateWindowKind
	Literal    time.Time // Kind == DateWindowLiteral のときの基準日（年月日のみ有効）
	OnlyOneDay bool
}

// Bounds は締め切りの範囲 [from, to) を計算します。
// 「終わりまで」は翌日0時(排他的上限)として表現します。from がゼロ値の場合は
// 下限なしです。Kind が DateWindowNoDeadline の場合は bounded=false を返し、
// 呼び出し側は deadline IS NULL で絞り込みます。
// タイムゾーンは引数で明示的に渡します。プロセス全体の状態は変更しません。
func (w *DateWindow) Bounds(now time.Time, loc *time.Location) (from, to time.Time, bounded bool) {
	if w.Kind == DateWindowNoDeadline {
		return time.Time{}, time.Time{}, false
	}

	var y int
	var m time.Month
	var d int
	if w.Kind == DateWindowLiteral {
		y, m, d = w.Literal.Date()
	} else {
		offset := 0
		switch w.Kind {
		case DateWindowTomorrow:
			offset = 1
		case DateWindowWeek:
			offset = WeekWindowDays
		}
		y, m, d = now.In(loc).AddDate(0, 0, offset).Date()
	}

	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	if w.OnlyOneDay {
		return dayStart, dayEnd, true
	}
	return time.Time{}, dayEnd, true
}

// TodoFilter は GET /api/todos の絞り込み条件を型付きで表します。
// すべて任意で、nil/空は「絞り込みなし」です。TagIDs は積条件で、
// 指定したすべてのタグを持つTodoだけが残ります。
type TodoFilter struct {
	Done       *bool
	CategoryID *int
	TagIDs     []int
	Window     *DateWindow
}
