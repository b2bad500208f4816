package generation

import "fmt"

// DeadlineLabel maps a day count to the coarsest human label.
func DeadlineLabel(days int) string {
	switch {
	case days <= 7:
		return fmt.Sprintf("%d dias", days)
	case days <= 14:
		return "2 semanas"
	case days <= 21:
		return "3 semanas"
	case days <= 31:
		return "1 mês"
	case days <= 62:
		return "2 meses"
	case days <= 93:
		return "3 meses"
	case days <= 186:
		return "6 meses"
	default:
		return fmt.Sprintf("%d dias", days)
	}
}
