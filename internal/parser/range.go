package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// GetRange converts the range arguments into simulation numbers.
//
// A single token is either one number, which yields a Single range, or an
// inclusive "start-end" span. Several tokens are taken as an explicit list.
func GetRange(tokens []string) (SimRange, error) {
	switch len(tokens) {
	case 0:
		return SimRange{}, fmt.Errorf("%w: no simulation numbers given", ErrInvalidRange)
	case 1:
		start, end, isSpan := strings.Cut(tokens[0], "-")
		if !isSpan {
			n, err := parseSimNumber(tokens[0])
			if err != nil {
				return SimRange{}, err
			}
			return SimRange{Numbers: []int{n}, Single: true}, nil
		}

		first, err := parseSimNumber(start)
		if err != nil {
			return SimRange{}, err
		}
		last, err := parseSimNumber(end)
		if err != nil {
			return SimRange{}, err
		}
		if first > last {
			return SimRange{}, fmt.Errorf("%w: start %d is greater than end %d", ErrInvalidRange, first, last)
		}

		numbers := make([]int, 0, last-first+1)
		for i := first; i <= last; i++ {
			numbers = append(numbers, i)
		}
		return SimRange{Numbers: numbers}, nil
	default:
		numbers := make([]int, len(tokens))
		for i, tok := range tokens {
			n, err := parseSimNumber(tok)
			if err != nil {
				return SimRange{}, err
			}
			numbers[i] = n
		}
		return SimRange{Numbers: numbers}, nil
	}
}

func parseSimNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a simulation number", ErrInvalidRange, s)
	}
	return n, nil
}
