package amount

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatThousands renders the amount with thousands separators in the
// integer part.
func FormatThousands(a Amount) string {
	prec := int32(0)
	if a.Commodity != nil {
		prec = a.Commodity.Precision()
	}
	s := a.Number.StringFixed(prec)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	var n int64
	fmt.Sscan(intPart, &n)
	b.WriteString(printer.Sprintf("%d", n))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	if a.Commodity != nil {
		b.WriteByte(' ')
		b.WriteString(a.Commodity.Name())
	}
	return b.String()
}
