package packseq

import "fmt"

// DataError describes a structural problem in an externally produced buffer,
// carrying enough of the offending bytes to debug it.
type DataError struct {
	Data []byte
	Off  int
	Msg  string
}

func dataErrf(data []byte, off int, format string, args ...any) error {
	return &DataError{data, off, fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		return fmt.Sprintf("%s at %d: (%d) %x", e.Msg, e.Off, n, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	return fmt.Sprintf("%s at %d: (%d) %x...%x", e.Msg, e.Off, n, p, s)
}

// corruptf is for invariant violations in buffers the engine itself produced.
// User input never reaches this path; Validate guards external buffers.
func corruptf(format string, args ...any) error {
	return fmt.Errorf("packseq: corrupt buffer: "+format, args...)
}
