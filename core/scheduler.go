package core

// Timer represents a scheduled main-loop task
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var timerList *Timer

// before reports whether a is earlier than b on the wrapping millisecond clock.
func before(a, b uint32) bool {
	return int32(a-b) < 0
}

// ScheduleTimer adds a timer to the schedule
func ScheduleTimer(t *Timer) {
	tok := Mask()
	defer tok.Restore()

	insertTimer(t)
}

// CancelTimer removes a timer from the schedule if present
func CancelTimer(t *Timer) {
	tok := Mask()
	defer tok.Restore()

	if timerList == t {
		timerList = t.Next
		t.Next = nil
		return
	}
	for cur := timerList; cur != nil; cur = cur.Next {
		if cur.Next == t {
			cur.Next = t.Next
			t.Next = nil
			return
		}
	}
}

// ResetTimers empties the schedule
func ResetTimers() {
	tok := Mask()
	defer tok.Restore()

	timerList = nil
}

// insertTimer inserts a timer in sorted order by WakeTime
func insertTimer(t *Timer) {
	if timerList == nil || before(t.WakeTime, timerList.WakeTime) {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && !before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// TimerDispatch runs the handler of every timer due at now. The list is
// only touched under the mask; handlers run with interrupts enabled so a
// handler doing VP access does not stretch the masked window. Rescheduled
// timers are queued after the pass, so each timer fires at most once per
// call.
func TimerDispatch(now uint32) {
	var again *Timer

	for {
		tok := Mask()
		timer := timerList
		if timer == nil || before(now, timer.WakeTime) {
			tok.Restore()
			break
		}
		timerList = timer.Next
		timer.Next = nil
		tok.Restore()

		if timer.Handler(timer) == SF_RESCHEDULE {
			timer.Next = again
			again = timer
		}
	}

	for again != nil {
		t := again
		again = t.Next
		t.Next = nil
		ScheduleTimer(t)
	}
}
