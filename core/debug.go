package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures one VP access or task event for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Arg    uint8  // Lane mask, IRQ number or task id
	Clock  uint32 // Millis at event
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtVPWrite     = 1 // vp write call: Value1=address Value2=length
	EvtVPRead      = 2 // vp read call: Value1=address Value2=length
	EvtTransaction = 3 // one handshake: Arg=mode Value1=slot
	EvtTask        = 4 // scheduled task ran: Arg=task id
	EvtConsole     = 5 // console byte handled: Value1=byte
	EvtPanic       = 6 // main loop recovered from a panic
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event capture ring buffer (main context only)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventsEnabled bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, stdout, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Returns immediately even if channel is full (drops message)
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordEvent captures an event in the ring buffer. Main context only.
func RecordEvent(eventType, arg uint8, clock, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Arg:    arg,
		Clock:  clock,
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the captured events from oldest to newest
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// DumpEventRing writes the event ring through w
func DumpEventRing(w DebugWriter) {
	if w == nil {
		return
	}

	w("[EVENTS] === Event Ring Dump ===")
	for _, evt := range Events() {
		var name string
		switch evt.Type {
		case EvtVPWrite:
			name = "VP_WRITE"
		case EvtVPRead:
			name = "VP_READ"
		case EvtTransaction:
			name = "HANDSHAKE"
		case EvtTask:
			name = "TASK"
		case EvtConsole:
			name = "CONSOLE"
		case EvtPanic:
			name = "PANIC!"
		default:
			name = "UNKNOWN"
		}

		w("[EVENTS] " + name +
			" arg=" + Itoa(int(evt.Arg)) +
			" clock=" + Utoa(evt.Clock) +
			" v1=" + Hex(evt.Value1, 4) +
			" v2=" + Utoa(evt.Value2))
	}
	w("[EVENTS] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
