package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadStdinFields reads whitespace-separated fields from standard input,
// for example commit hashes piped from git log. A terminal or an empty
// file yields no fields instead of blocking.
func ReadStdinFields() ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}

	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, nil
	}
	if stat.Mode().IsRegular() && stat.Size() == 0 {
		return nil, nil
	}

	return ReadFields(os.Stdin)
}

// ReadFields splits r into whitespace-separated fields. Text after '#' on a line is ignored.
func ReadFields(r io.Reader) ([]string, error) {
	var fields []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields = append(fields, strings.Fields(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return fields, nil
}
