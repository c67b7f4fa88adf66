package engine

import "fmt"

// Token represents the content of a single board cell
type Token int

const (
	Empty Token = iota
	TokenA
	TokenB
)

// Board dimensions
const (
	Rows      = 6
	Columns   = 7
	Cells     = Rows * Columns
	ToWin     = 4
	MinColumn = 1
	MaxColumn = Columns
)

// String returns a one-character code used in layouts and logs
func (t Token) String() string {
	switch t {
	case TokenA:
		return "A"
	case TokenB:
		return "B"
	default:
		return "."
	}
}

// MarshalText encodes the token as its layout character
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a layout character
func (t *Token) UnmarshalText(text []byte) error {
	tok, err := parseToken(rune(firstByte(text)))
	if err != nil {
		return err
	}
	*t = tok
	return nil
}

func firstByte(b []byte) byte {
	if len(b) != 1 {
		return 0
	}
	return b[0]
}

func parseToken(r rune) (Token, error) {
	switch r {
	case '.', '0', ' ':
		return Empty, nil
	case 'A', 'a', '1':
		return TokenA, nil
	case 'B', 'b', '2':
		return TokenB, nil
	default:
		return Empty, fmt.Errorf("invalid token %q", r)
	}
}

// PlayerID is an opaque player identity. The engine only compares it.
type PlayerID string

// Outcome is the classification of a move attempt
type Outcome int

const (
	Accepted Outcome = iota
	WinA
	WinB
	Draw
	InvalidColumn
	WrongPlayer
	// GameOver rejects moves on a game that already produced a terminal outcome.
	GameOver
)

var outcomeNames = map[Outcome]string{
	Accepted:      "accepted",
	WinA:          "win_a",
	WinB:          "win_b",
	Draw:          "draw",
	InvalidColumn: "invalid_column",
	WrongPlayer:   "wrong_player",
	GameOver:      "game_over",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name
func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", string(text))
}

// IsTerminal reports whether the outcome ends the game
func (o Outcome) IsTerminal() bool {
	return o == WinA || o == WinB || o == Draw
}

// IsRejection reports whether the move was refused without touching the board
func (o Outcome) IsRejection() bool {
	return o == InvalidColumn || o == WrongPlayer || o == GameOver
}

// Move is a single move request. It is consumed synchronously and not stored.
type Move struct {
	Player PlayerID `json:"player"`
	Column int      `json:"column"`
}
