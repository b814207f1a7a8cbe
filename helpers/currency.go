package helpers

import "fmt"

// FormatINR formats a number as Indian Rupee currency using Indian digit
// grouping (last three digits, then groups of two: ₹12,34,567).
func FormatINR(amount float64) string {
	value := int64(amount)

	// Handle negative numbers
	negative := value < 0
	if negative {
		value = -value
	}

	str := fmt.Sprintf("%d", value)
	length := len(str)

	if length <= 3 {
		if negative {
			return fmt.Sprintf("₹-%s", str)
		}
		return fmt.Sprintf("₹%s", str)
	}

	// Last three digits form the first group, the remainder splits into pairs
	head := str[:length-3]
	tail := str[length-3:]

	var result string
	headLen := len(head)
	for i, digit := range head {
		if i > 0 && (headLen-i)%2 == 0 {
			result += ","
		}
		result += string(digit)
	}
	result += "," + tail

	if negative {
		return fmt.Sprintf("₹-%s", result)
	}
	return fmt.Sprintf("₹%s", result)
}
