// Package dgus wraps the system variables of a DWIN DGUS display: page
// switching, backlight, PWM outputs, ADC inputs, the display RTC and the
// OS/flash command words. Every access goes through a Memory, either the
// on-chip VP engine or a serial link from a host.
package dgus

// System variable addresses (word addressed).
const (
	SysReset     uint16 = 0x0004 // reset command, 55 AA 5A A5
	OSUpdate     uint16 = 0x0006 // 8051 code update command
	NorFlash     uint16 = 0x0008 // NOR flash read/write command
	UART2Config  uint16 = 0x000C
	Version      uint16 = 0x000F // hi = GUI version, lo = OS version
	RTC          uint16 = 0x0010 // Y M D W H M S 0
	PicNow       uint16 = 0x0014
	GUIStatus    uint16 = 0x0015
	TouchStatus  uint16 = 0x0016
	LEDNow       uint16 = 0x0031
	ADCInstant   uint16 = 0x0032 // AD0..AD7, one word each
	LCDHorRes    uint16 = 0x007A
	LCDVerRes    uint16 = 0x007B
	SystemConfig uint16 = 0x0080
	LEDConfig    uint16 = 0x0082
	PicSet       uint16 = 0x0084
	PWM0Set      uint16 = 0x0086
	PWM1Set      uint16 = 0x0088
	PWM0Out      uint16 = 0x0092
	PWM1Out      uint16 = 0x0093
	FlashBlock   uint16 = 0x00AA // 32 KB block write command

	FSKStart         uint16 = 0x0100
	CurveStatusStart uint16 = 0x0300
	CurveConfigStart uint16 = 0x0380
	NetworkStart     uint16 = 0x0400

	// First free user address when no curve buffers are configured.
	UserStart uint16 = 0x1000
	// First free user address with the 8-channel curve buffer at
	// 0x1000-0x4FFF.
	UserStartWithCurve uint16 = 0x5000
)

// PWMBaseClock is the PWM input clock in Hz before division.
const PWMBaseClock = 825753600

// Command enable bytes.
const (
	cmdEnable    = 0x5A
	cmdPageMode  = 0x01
	cmdFlashMode = 0x02 // write 32 KB from VP memory
	cmdOSUpdate  = 0xA5 // 64 KB user code block
)

var resetCommand = [4]byte{0x55, 0xAA, 0x5A, 0xA5}

// ADCChannels is the number of instantaneous ADC inputs.
const ADCChannels = 8

// MaxBrightness is the backlight level for full brightness.
const MaxBrightness = 100
