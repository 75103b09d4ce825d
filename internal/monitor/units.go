package monitor

import (
	"fmt"
	"math"
)

// Unit is a binary magnitude step.
type Unit int

const (
	UnitB Unit = iota
	UnitKB
	UnitMB
	UnitGB
	UnitTB
)

var unitNames = [...]string{"B", "KB", "MB", "GB", "TB"}

// String returns the unit suffix.
func (u Unit) String() string {
	if u < UnitB || u > UnitTB {
		return "?"
	}
	return unitNames[u]
}

// factor returns the number of bytes in one u.
func (u Unit) factor() float64 {
	return math.Pow(1024, float64(u))
}

// zeroBytes is returned for input that isn't a usable magnitude.
const zeroBytes = "0 B"

// FormatBytes renders a byte count (or byte rate when perSecond is set) with
// the largest binary unit the value reaches and exactly one decimal.
//
//	FormatBytes(1023, false)    == "1023.0 B"
//	FormatBytes(1048576, false) == "1.0 MB"
//	FormatBytes(2e6, true)      == "1.9 MB/s"
//
// Negative, NaN and infinite input yields "0 B" ("0 B/s" for rates).
func FormatBytes(value float64, perSecond bool) string {
	return FormatScaled(value, UnitB, perSecond)
}

// FormatScaled is FormatBytes for a value already expressed in base units,
// e.g. a KB/s figure from iostat: FormatScaled(0.5, UnitKB, false) == "0.5 KB".
func FormatScaled(value float64, base Unit, perSecond bool) string {
	suffix := ""
	if perSecond {
		suffix = "/s"
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || base < UnitB || base > UnitTB {
		return zeroBytes + suffix
	}

	bytes := value * base.factor()
	unit := base
	for u := UnitTB; u > base; u-- {
		if bytes >= u.factor() {
			unit = u
			break
		}
	}

	mantissa := bytes / unit.factor()
	// 1023.95 and up would print as "1024.0"; show it in the next unit.
	if unit < UnitTB && math.Round(mantissa*10)/10 >= 1024 {
		unit++
		mantissa = bytes / unit.factor()
	}
	return fmt.Sprintf("%.1f %s%s", mantissa, unit, suffix)
}

// FormatOptional renders a possibly missing numeric reading.
func FormatOptional(v *float64, format string) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf(format, *v)
}

// NotAvailable marks a reading the source could not provide.
const NotAvailable = "N/A"
