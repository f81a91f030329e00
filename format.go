package snippet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Separator sits between the parts of a log line.
const Separator = "|::::|"

// formatCapture renders the primary line of a capture.
func formatCapture(message string, rec Record, flags Flag) string {
	var b strings.Builder
	b.Grow(128)
	if message != "" {
		b.WriteString(message)
		b.WriteString("::")
	}
	if flags&FlagClass != 0 {
		b.WriteString("[Class = ")
		b.WriteString(rec.Symbol)
		b.WriteString("]")
		b.WriteString(Separator)
	}
	if flags&FlagMethod != 0 {
		b.WriteString("[Method = ")
		b.WriteString(rec.Function)
		b.WriteString("]")
		b.WriteString(Separator)
	}
	if flags&FlagLine != 0 {
		b.WriteString("<Line no. ")
		b.WriteString(strconv.Itoa(rec.Line))
		b.WriteString(">")
		b.WriteString(Separator)
	}
	if flags&FlagThread != 0 {
		b.WriteString("[Thread name = ")
		b.WriteString(rec.Thread)
		b.WriteString("]")
		b.WriteString(Separator)
	}
	b.WriteString("(")
	b.WriteString(strconv.FormatInt(rec.Millis(), 10))
	b.WriteString(" ms)")
	return b.String()
}

// formatSplit renders the line emitted when a split is added.
func formatSplit(s Split) string {
	var b strings.Builder
	b.WriteString("********SPLIT[")
	b.WriteString(strconv.Itoa(s.Sequence))
	b.WriteString("]")
	if s.Name != "" {
		b.WriteString("[")
		b.WriteString(s.Name)
		b.WriteString("]")
	}
	b.WriteString(Separator)
	b.WriteString("(")
	b.WriteString(strconv.FormatInt(s.Delta().Milliseconds(), 10))
	b.WriteString(" ms)********")
	return b.String()
}

// formatSplitSummary renders every split with its share of the total.
func formatSplitSummary(splits []Split, rec Record) (string, error) {
	var b strings.Builder
	b.WriteString("Split Summary\n")

	table := tablewriter.NewWriter(&b)
	table.Header("Split", "Name", "Duration", "Share")
	for _, s := range splits {
		err := table.Append([]string{
			strconv.Itoa(s.Sequence),
			s.Name,
			fmt.Sprintf("%d/%d ms", s.Delta().Milliseconds(), rec.Millis()),
			fmt.Sprintf("%.3f %%", s.Percentage(rec.Duration)),
		})
		if err != nil {
			return "", fmt.Errorf("split summary: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return "", fmt.Errorf("split summary: %w", err)
	}
	return b.String(), nil
}
