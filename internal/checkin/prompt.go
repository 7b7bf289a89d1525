package checkin

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads one answer per line. Surrounding whitespace is trimmed.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// ask prints text and reads the reply. It reports false once input is
// exhausted; err then tells whether that was a read failure or EOF.
func (p *prompter) ask(text string) (string, bool) {
	fmt.Fprint(p.out, text)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

func (p *prompter) err() error {
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
