package document

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_VALUE = iota
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[^ \t\r\n]+`), getToken(TOKEN_VALUE))
	lexer.Add([]byte(`[ \t\r\n]+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// scan calls fn with every whitespace separated value of text and the line it starts on.
func scan(text string, fn func(value string, line int) error) error {
	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return errors.Wrapf(err, "Failed to create lexer scanner")
	}
	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)
		if err := fn(string(tok.Lexeme), tok.StartLine); err != nil {
			return err
		}
	}
	return nil
}

func parseFloats(text string) ([]float32, error) {
	result := make([]float32, 0, 16)
	err := scan(text, func(value string, line int) error {
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return errors.Errorf("Unknown float format on line %v (%q)", line, value)
		}
		result = append(result, float32(f))
		return nil
	})
	return result, err
}

func parseInts(text string) ([]int, error) {
	result := make([]int, 0, 16)
	err := scan(text, func(value string, line int) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return errors.Errorf("Unknown integer format on line %v (%q)", line, value)
		}
		result = append(result, i)
		return nil
	})
	return result, err
}

func parseBools(text string) ([]bool, error) {
	result := make([]bool, 0, 16)
	err := scan(text, func(value string, line int) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Errorf("Unknown bool format on line %v (%q)", line, value)
		}
		result = append(result, b)
		return nil
	})
	return result, err
}

func parseNames(text string) ([]string, error) {
	result := make([]string, 0, 16)
	err := scan(text, func(value string, line int) error {
		result = append(result, value)
		return nil
	})
	return result, err
}
